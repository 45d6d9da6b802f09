package appointment

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending   Status = "en attente"
	StatusConfirmed Status = "confirmé"
	StatusCancelled Status = "annulé"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrSlotTaken     = errors.New("time slot already booked")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidID     = errors.New("invalid appointment id")
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidDate   = errors.New("invalid appointment date")
	ErrInvalidSlot   = errors.New("invalid time slot")
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// HoldsSlot reports whether a booking in this status occupies its (date, slot) pair.
func (s Status) HoldsSlot() bool {
	return s != StatusCancelled
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Appointment struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"full_name"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	PhoneNumber     string    `json:"phone_number"`
	CreatedAt       time.Time `json:"created_at"`
	Statut          Status    `json:"statut"`
}

type CreateAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required,isodate"`
	TimeSlot        string `json:"time_slot" binding:"required,slot"`
	FullName        string `json:"full_name" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required,phone"`
}

type UpdateStatusRequest struct {
	Statut string `json:"statut"`
}

type CreateInput struct {
	AppointmentDate string
	TimeSlot        string
	FullName        string
	PhoneNumber     string
}

func (in CreateInput) Normalize() CreateInput {
	return CreateInput{
		AppointmentDate: strings.TrimSpace(in.AppointmentDate),
		TimeSlot:        strings.TrimSpace(in.TimeSlot),
		FullName:        strings.TrimSpace(in.FullName),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
	}
}

func (in CreateInput) Validate() error {
	if in.AppointmentDate == "" || in.TimeSlot == "" || in.FullName == "" || in.PhoneNumber == "" {
		return ErrMissingFields
	}
	if !ValidDate(in.AppointmentDate) {
		return ErrInvalidDate
	}
	if !ValidSlot(in.TimeSlot) {
		return ErrInvalidSlot
	}
	return nil
}

// NewFromCreateInput builds a pending booking. Status is never client-supplied.
func NewFromCreateInput(in CreateInput, now time.Time) Appointment {
	return Appointment{
		FullName:        in.FullName,
		AppointmentDate: in.AppointmentDate,
		TimeSlot:        in.TimeSlot,
		PhoneNumber:     in.PhoneNumber,
		CreatedAt:       now,
		Statut:          StatusPending,
	}
}

func ValidDate(raw string) bool {
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

var slotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(-([01]\d|2[0-3]):[0-5]\d)?$`)

// ValidSlot accepts a start label ("09:00") or a range label ("09:00-09:30") whose end is after its start.
func ValidSlot(raw string) bool {
	if !slotPattern.MatchString(raw) {
		return false
	}
	start, end, isRange := strings.Cut(raw, "-")
	if !isRange {
		return true
	}
	// zero-padded HH:MM compares correctly as text
	return end > start
}
