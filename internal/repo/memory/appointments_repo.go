package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/clinicdesk/internal/domain/appointment"
)

// AppointmentsRepo holds bookings in process. Check and insert share one lock,
// which gives the same slot exclusivity as the partial unique index in Postgres.
type AppointmentsRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]appointment.Appointment
}

func NewAppointmentsRepo() *AppointmentsRepo {
	return &AppointmentsRepo{
		items: make(map[int64]appointment.Appointment),
	}
}

func (r *AppointmentsRepo) List(ctx context.Context) ([]appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointment.Appointment, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *AppointmentsRepo) SlotHeld(ctx context.Context, date, slot string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.heldLocked(date, slot, 0), nil
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.Statut.HoldsSlot() && r.heldLocked(a.AppointmentDate, a.TimeSlot, 0) {
		return appointment.Appointment{}, appointment.ErrSlotTaken
	}

	r.seq++
	a.ID = r.seq
	r.items[a.ID] = a

	return a, nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id int64) (appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	return a, nil
}

func (r *AppointmentsRepo) UpdateStatus(ctx context.Context, id int64, s appointment.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return appointment.ErrNotFound
	}

	// reviving a cancelled booking must not collide with a newer one on the same slot
	if s.HoldsSlot() && r.heldLocked(a.AppointmentDate, a.TimeSlot, id) {
		return appointment.ErrSlotTaken
	}

	a.Statut = s
	r.items[id] = a

	return nil
}

func (r *AppointmentsRepo) heldLocked(date, slot string, exceptID int64) bool {
	for id, a := range r.items {
		if id == exceptID {
			continue
		}
		if a.AppointmentDate == date && a.TimeSlot == slot && a.Statut.HoldsSlot() {
			return true
		}
	}
	return false
}
