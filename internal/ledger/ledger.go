// Package ledger books appointments and moves them between statuses.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/clinicdesk/internal/domain/appointment"
)

const listCacheKey = "appointments:list:v1"

type Repository interface {
	List(ctx context.Context) ([]appointment.Appointment, error)
	SlotHeld(ctx context.Context, date, slot string) (bool, error)
	Create(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, s appointment.Status) error
}

type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

type BookingRecorder interface {
	ObserveBooking(result string)
}

type Ledger struct {
	repo    Repository
	cache   ListCache
	metrics BookingRecorder
	log     *slog.Logger
	now     func() time.Time

	// fillMu orders list fills against invalidations; gen counts invalidations.
	fillMu sync.Mutex
	gen    uint64
}

type Option func(*Ledger)

func WithCache(c ListCache) Option {
	return func(l *Ledger) { l.cache = c }
}

func WithMetrics(m BookingRecorder) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(repo Repository, log *slog.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = slog.Default()
	}

	l := &Ledger{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Ledger) List(ctx context.Context) ([]appointment.Appointment, error) {
	if l.cache != nil {
		if b, ok, err := l.cache.Get(ctx, listCacheKey); err == nil && ok {
			var cached []appointment.Appointment
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		} else if err != nil {
			l.log.WarnContext(ctx, "appointment cache read failed", "err", err)
		}
	}

	gen := l.generation()

	items, err := l.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.fill(ctx, gen, items)
	}

	return items, nil
}

func (l *Ledger) generation() uint64 {
	l.fillMu.Lock()
	defer l.fillMu.Unlock()
	return l.gen
}

// fill caches a snapshot read at generation gen, unless a write invalidated the
// list since then.
func (l *Ledger) fill(ctx context.Context, gen uint64, items []appointment.Appointment) {
	b, err := json.Marshal(items)
	if err != nil {
		return
	}

	l.fillMu.Lock()
	defer l.fillMu.Unlock()

	if l.gen != gen {
		l.log.DebugContext(ctx, "skipping stale appointment cache fill")
		return
	}

	if err := l.cache.Set(ctx, listCacheKey, b); err != nil {
		l.log.WarnContext(ctx, "appointment cache write failed", "err", err)
	}
}

// Create books a (date, slot) pair. The SlotHeld pre-check only produces the early
// error; the repository insert is what actually rejects a double booking.
func (l *Ledger) Create(ctx context.Context, in appointment.CreateInput) (appointment.Appointment, error) {
	in = in.Normalize()

	if err := in.Validate(); err != nil {
		l.observe("invalid")
		return appointment.Appointment{}, err
	}

	held, err := l.repo.SlotHeld(ctx, in.AppointmentDate, in.TimeSlot)
	if err != nil {
		l.observe("error")
		return appointment.Appointment{}, err
	}

	if held {
		l.observe("slot_taken")
		return appointment.Appointment{}, appointment.ErrSlotTaken
	}

	created, err := l.repo.Create(ctx, appointment.NewFromCreateInput(in, l.now()))
	if err != nil {
		if errors.Is(err, appointment.ErrSlotTaken) {
			l.log.InfoContext(ctx, "slot taken by concurrent booking", "date", in.AppointmentDate, "slot", in.TimeSlot)
			l.observe("slot_taken")
		} else {
			l.observe("error")
		}
		return appointment.Appointment{}, err
	}

	l.observe("created")
	l.invalidate(ctx)

	l.log.InfoContext(ctx, "appointment booked", "appointment_id", created.ID, "date", created.AppointmentDate, "slot", created.TimeSlot)

	return created, nil
}

// UpdateStatus sets any of the three statuses regardless of the current one.
func (l *Ledger) UpdateStatus(ctx context.Context, id int64, raw string) (appointment.Status, error) {
	if id <= 0 {
		return "", appointment.ErrInvalidID
	}

	status, err := appointment.ParseStatus(raw)
	if err != nil {
		return "", err
	}

	if err := l.repo.UpdateStatus(ctx, id, status); err != nil {
		return "", err
	}

	l.invalidate(ctx)

	l.log.InfoContext(ctx, "appointment status changed", "appointment_id", id, "statut", status)

	return status, nil
}

func (l *Ledger) invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}

	l.fillMu.Lock()
	defer l.fillMu.Unlock()

	l.gen++
	if err := l.cache.Delete(ctx, listCacheKey); err != nil {
		l.log.WarnContext(ctx, "appointment cache invalidation failed", "err", err)
	}
}

func (l *Ledger) observe(result string) {
	if l.metrics != nil {
		l.metrics.ObserveBooking(result)
	}
}
