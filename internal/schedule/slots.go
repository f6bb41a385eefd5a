package schedule

// TimeSlot is a fixed 2-hour collection or delivery window.
type TimeSlot struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Six two-hour windows between 08:00 and 20:00.
var timeSlots = []TimeSlot{
	{ID: 1, Label: "08:00 - 10:00"},
	{ID: 2, Label: "10:00 - 12:00"},
	{ID: 3, Label: "12:00 - 14:00"},
	{ID: 4, Label: "14:00 - 16:00"},
	{ID: 5, Label: "16:00 - 18:00"},
	{ID: 6, Label: "18:00 - 20:00"},
}

// TimeSlots returns all bookable windows in order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// SlotLabel returns the display label for a slot id. Unknown ids resolve
// to an empty string.
func SlotLabel(id int) string {
	for _, slot := range timeSlots {
		if slot.ID == id {
			return slot.Label
		}
	}
	return ""
}

// ValidSlotID reports whether id names a bookable window.
func ValidSlotID(id int) bool {
	return SlotLabel(id) != ""
}
