package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/clinicdesk/internal/actorctx"
	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLoggerAddsActor(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "test")

	ctx := actorctx.With(context.Background(), actorctx.Actor{UserID: 7, Role: user.RoleSuperadmin})
	log.InfoContext(ctx, "user deleted")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	if rec["actor_id"] != float64(7) || rec["actor_role"] != "superadmin" {
		t.Fatalf("expected actor attrs, got %v", rec)
	}
	if rec["service"] != ServiceName {
		t.Fatalf("expected service attr, got %v", rec["service"])
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505"}, "unique_violation"},
		{&pgconn.PgError{Code: "23514"}, "check_violation"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("failed to connect: connection refused"), "connection"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		if got := ClassifyDBErr(tt.err); got != tt.want {
			t.Fatalf("ClassifyDBErr(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserveDBCountsErrorsButNotMissingRows(t *testing.T) {
	p := NewProm(NewRegistry())

	_ = p.ObserveDB("users.get_by_id", func() error { return pgx.ErrNoRows })
	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get_by_id", "unknown")); got != 0 {
		t.Fatalf("missing row must not count as a DB error, got %v", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("expected 1 unique violation, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	p := NewProm(NewRegistry())

	p.ObserveBooking("created")
	p.ObserveBooking("slot_taken")
	p.ObserveBooking("slot_taken")
	p.ObserveLogin("ok")

	if got := testutil.ToFloat64(p.BookingsTotal.WithLabelValues("slot_taken")); got != 2 {
		t.Fatalf("got %v slot_taken bookings, want 2", got)
	}
	if got := testutil.ToFloat64(p.LoginsTotal.WithLabelValues("ok")); got != 1 {
		t.Fatalf("got %v ok logins, want 1", got)
	}
}

func TestInitTracerDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned %v", err)
	}
}
