package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/clinicdesk/internal/domain/appointment"
	"github.com/geocoder89/clinicdesk/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// partial unique index over (appointment_date, time_slot) WHERE statut <> 'annulé'
const appointmentsSlotConstraint = "appointments_slot_active_uniq"

type AppointmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAppointmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AppointmentsRepo {
	return &AppointmentsRepo{pool: pool, prom: prom}
}

func (repo *AppointmentsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *AppointmentsRepo) List(ctx context.Context) (items []appointment.Appointment, err error) {
	var rows pgx.Rows

	err = repo.observe("appointments.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT id, full_name, appointment_date, time_slot, phone_number, created_at, statut
			FROM appointments
			ORDER BY appointment_date ASC, time_slot ASC, id ASC
		`)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items = make([]appointment.Appointment, 0)

	for rows.Next() {
		a, scanErr := scanAppointment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (repo *AppointmentsRepo) SlotHeld(ctx context.Context, date, slot string) (bool, error) {
	var exists bool

	err := repo.observe("appointments.slot_held", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE appointment_date = $1::date AND time_slot = $2 AND statut <> $3
		)`, date, slot, string(appointment.StatusCancelled)).Scan(&exists)
	})

	return exists, err
}

// Create inserts the booking. A concurrent booking that slipped past the pre-check
// is rejected here by the partial unique index.
func (repo *AppointmentsRepo) Create(ctx context.Context, a appointment.Appointment) (appointment.Appointment, error) {
	var created appointment.Appointment

	err := repo.observe("appointments.create", func() error {
		row := repo.pool.QueryRow(ctx, `
			INSERT INTO appointments (full_name, appointment_date, time_slot, phone_number, statut)
			VALUES ($1, $2::date, $3, $4, $5)
			RETURNING id, full_name, appointment_date, time_slot, phone_number, created_at, statut
		`, a.FullName, a.AppointmentDate, a.TimeSlot, a.PhoneNumber, string(a.Statut))

		var scanErr error
		created, scanErr = scanAppointment(row)
		return scanErr
	})

	if err != nil {
		if isSlotViolation(err) {
			return appointment.Appointment{}, appointment.ErrSlotTaken
		}
		return appointment.Appointment{}, err
	}

	return created, nil
}

func (repo *AppointmentsRepo) GetByID(ctx context.Context, id int64) (appointment.Appointment, error) {
	var a appointment.Appointment

	err := repo.observe("appointments.get_by_id", func() error {
		row := repo.pool.QueryRow(ctx, `
			SELECT id, full_name, appointment_date, time_slot, phone_number, created_at, statut
			FROM appointments WHERE id = $1
		`, id)

		var scanErr error
		a, scanErr = scanAppointment(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return appointment.Appointment{}, appointment.ErrNotFound
		}
		return appointment.Appointment{}, err
	}

	return a, nil
}

func (repo *AppointmentsRepo) UpdateStatus(ctx context.Context, id int64, s appointment.Status) error {
	var tag pgconn.CommandTag

	err := repo.observe("appointments.update_status", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `UPDATE appointments SET statut = $2 WHERE id = $1`, id, string(s))
		return e
	})

	if err != nil {
		if isSlotViolation(err) {
			return appointment.ErrSlotTaken
		}
		return err
	}

	if tag.RowsAffected() == 0 {
		return appointment.ErrNotFound
	}

	return nil
}

func scanAppointment(row pgx.Row) (appointment.Appointment, error) {
	var a appointment.Appointment
	var date time.Time
	var statut string

	err := row.Scan(&a.ID, &a.FullName, &date, &a.TimeSlot, &a.PhoneNumber, &a.CreatedAt, &statut)
	if err != nil {
		return appointment.Appointment{}, err
	}

	a.AppointmentDate = date.Format(appointment.DateLayout)

	a.Statut, err = appointment.ParseStatus(statut)
	if err != nil {
		return appointment.Appointment{}, fmt.Errorf("appointment %d has unknown status %q: %w", a.ID, statut, err)
	}

	return a, nil
}

func isSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == appointmentsSlotConstraint
}
