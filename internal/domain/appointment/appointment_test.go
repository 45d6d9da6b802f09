package appointment

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"en attente", "confirmé", "annulé"} {
		s, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", raw, err)
		}
		if string(s) != raw {
			t.Fatalf("got %q, want %q", s, raw)
		}
	}

	for _, raw := range []string{"", "confirme", "Confirmé", "cancelled", " annulé"} {
		if _, err := ParseStatus(raw); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("ParseStatus(%q) expected ErrInvalidStatus, got %v", raw, err)
		}
	}
}

func TestStatusHoldsSlot(t *testing.T) {
	if !StatusPending.HoldsSlot() || !StatusConfirmed.HoldsSlot() {
		t.Fatalf("pending and confirmed bookings must hold their slot")
	}
	if StatusCancelled.HoldsSlot() {
		t.Fatalf("cancelled bookings must not hold their slot")
	}
}

func TestValidSlot(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"09:00", true},
		{"23:59", true},
		{"09:00-09:30", true},
		{"9:00", false},
		{"24:00", false},
		{"09:60", false},
		{"09:30-09:00", false},
		{"09:00-09:00", false},
		{"morning", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidSlot(tt.in); got != tt.want {
			t.Fatalf("ValidSlot(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCreateInputValidate(t *testing.T) {
	valid := CreateInput{AppointmentDate: "2024-01-01", TimeSlot: "09:00", FullName: "B", PhoneNumber: "+2"}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	missing := valid
	missing.PhoneNumber = ""
	if err := missing.Validate(); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	badDate := valid
	badDate.AppointmentDate = "2024-13-01"
	if err := badDate.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	badSlot := valid
	badSlot.TimeSlot = "soon"
	if err := badSlot.Validate(); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestNewFromCreateInputStartsPending(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	a := NewFromCreateInput(CreateInput{AppointmentDate: "2024-01-01", TimeSlot: "09:00", FullName: "B", PhoneNumber: "+2"}, now)

	if a.Statut != StatusPending {
		t.Fatalf("expected initial status %q, got %q", StatusPending, a.Statut)
	}
	if !a.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, a.CreatedAt)
	}
}
