package scheduling

import (
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/models"
)

// SlotDuration is the booking granularity of the workshop calendar.
const SlotDuration = 30 * time.Minute

// BusySlots returns the slot start times unavailable for new bookings on the
// given day. Every open order scheduled within the day occupies its own slot
// and the following one. Slots never bleed past the day boundary.
func BusySlots(orders []models.WorkOrder, day time.Time) []time.Time {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	seen := make(map[time.Time]bool)
	var busy []time.Time
	for _, o := range orders {
		if !o.Estado.IsOpen() || o.FechaHoraAgendada == nil {
			continue
		}
		t := o.FechaHoraAgendada.In(day.Location())
		if t.Before(dayStart) || !t.Before(dayEnd) {
			continue
		}
		for _, slot := range []time.Time{t, t.Add(SlotDuration)} {
			if !slot.Before(dayEnd) || seen[slot] {
				continue
			}
			seen[slot] = true
			busy = append(busy, slot)
		}
	}
	return busy
}

// IsSlotFree reports whether a new order may be booked at t given the
// existing orders. A slot is taken when an open order occupies t directly or
// from the preceding slot.
func IsSlotFree(orders []models.WorkOrder, t time.Time) bool {
	for _, o := range orders {
		if !o.Estado.IsOpen() || o.FechaHoraAgendada == nil {
			continue
		}
		booked := *o.FechaHoraAgendada
		if booked.Equal(t) || booked.Add(SlotDuration).Equal(t) || t.Add(SlotDuration).Equal(booked) {
			return false
		}
	}
	return true
}
