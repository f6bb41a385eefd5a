package controllers

import (
	"net/http"

	"github.com/CodeX93/freshbox-backend/api/responses"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

// ScheduleDates lists the bookable calendar dates. The "for" parameter
// selects the collection or delivery window; collection is the default.
func ScheduleDates(alloc *schedule.Allocator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts []schedule.DateOption
		switch r.URL.Query().Get("for") {
		case "", "collection":
			opts = schedule.CollectDateOptions(alloc.CollectionDates())
		case "delivery":
			opts = schedule.CollectDateOptions(alloc.DeliveryDates())
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, `"for" must be collection or delivery`))
			return
		}

		responses.WriteSuccess(w, map[string]any{"dates": opts})
	}
}

// ScheduleSlots lists the fixed 2-hour time slots.
func ScheduleSlots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"slots": schedule.TimeSlots()})
	}
}
