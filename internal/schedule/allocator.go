package schedule

import (
	"iter"
	"time"
)

// DateOptionCount is the fixed length of every generated date sequence.
const DateOptionCount = 14

const isoDate = "2006-01-02"

// DateOption pairs an ISO calendar date with a display label.
type DateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Allocator produces bookable collection and delivery dates. Collection
// starts collectionOffset days from now and delivery one window later, which
// encodes the policy that delivery begins the day after the earliest
// collection day.
type Allocator struct {
	collectionOffset int
	deliveryOffset   int
	now              func() time.Time
}

// NewAllocator wires the allocator with its configured offsets.
func NewAllocator(collectionOffsetDays, deliveryOffsetDays int) *Allocator {
	if collectionOffsetDays < 0 {
		collectionOffsetDays = 0
	}
	if deliveryOffsetDays < collectionOffsetDays {
		deliveryOffsetDays = collectionOffsetDays
	}
	return &Allocator{
		collectionOffset: collectionOffsetDays,
		deliveryOffset:   deliveryOffsetDays,
		now:              time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// CollectionDates yields the bookable collection dates.
func (a *Allocator) CollectionDates() iter.Seq[DateOption] {
	return a.DateOptions(a.collectionOffset)
}

// DeliveryDates yields the bookable delivery dates.
func (a *Allocator) DeliveryDates() iter.Seq[DateOption] {
	return a.DateOptions(a.deliveryOffset)
}

// DateOptions returns a lazy, restartable sequence of DateOptionCount
// calendar dates beginning startOffsetDays from the current date. Each
// range over the sequence re-evaluates against the clock.
func (a *Allocator) DateOptions(startOffsetDays int) iter.Seq[DateOption] {
	return func(yield func(DateOption) bool) {
		start := a.now()
		for i := 0; i < DateOptionCount; i++ {
			day := start.AddDate(0, 0, startOffsetDays+i)
			opt := DateOption{
				Value: day.Format(isoDate),
				Label: day.Format("Mon, 2 Jan 2006"),
			}
			if !yield(opt) {
				return
			}
		}
	}
}

// CollectDateOptions materializes a date sequence into a slice.
func CollectDateOptions(seq iter.Seq[DateOption]) []DateOption {
	out := make([]DateOption, 0, DateOptionCount)
	for opt := range seq {
		out = append(out, opt)
	}
	return out
}
