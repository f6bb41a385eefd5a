package schedule

import (
	"fmt"
	"time"

	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
)

// Selection is the schedule half of a draft order.
type Selection struct {
	CollectionDate       string `json:"collection_date" validate:"required"`
	CollectionTimeSlotID int    `json:"collection_time_slot_id" validate:"required"`
	DeliveryDate         string `json:"delivery_date" validate:"required"`
	DeliveryTimeSlotID   int    `json:"delivery_time_slot_id" validate:"required"`
}

// Validate checks that all four fields are set, the slot ids exist, and the
// delivery date does not precede the collection date. The date comparison is
// enforced computationally; a disabled form control is not a guarantee.
func (s Selection) Validate() error {
	if s.CollectionDate == "" || s.DeliveryDate == "" ||
		s.CollectionTimeSlotID == 0 || s.DeliveryTimeSlotID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "schedule selection is incomplete")
	}

	collection, err := time.Parse(isoDate, s.CollectionDate)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid collection date %q", s.CollectionDate))
	}
	delivery, err := time.Parse(isoDate, s.DeliveryDate)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid delivery date %q", s.DeliveryDate))
	}

	if !ValidSlotID(s.CollectionTimeSlotID) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown collection time slot %d", s.CollectionTimeSlotID))
	}
	if !ValidSlotID(s.DeliveryTimeSlotID) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown delivery time slot %d", s.DeliveryTimeSlotID))
	}

	if delivery.Before(collection) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"delivery date must not precede collection date")
	}
	return nil
}
