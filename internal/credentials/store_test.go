package credentials

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/geocoder89/clinicdesk/internal/repo/memory"
)

type prefixHasher struct{}

func (prefixHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }

const reserved = "root@clinic.test"

func newTestStore(t *testing.T) (*Store, *memory.UsersRepo) {
	t.Helper()
	repo := memory.NewUsersRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, prefixHasher{}, reserved, log), repo
}

func seedSuperadmin(t *testing.T, s *Store) user.User {
	t.Helper()
	if _, err := s.EnsureSuperadmin(context.Background(), Seed{Email: reserved, Password: "pw", Name: "Root", Phone: "0"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	u, err := s.repo.GetByEmail(context.Background(), reserved)
	if err != nil {
		t.Fatalf("seeded row missing: %v", err)
	}
	return u
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      user.CreateInput
		wantErr error
	}{
		{
			name: "admin",
			in:   user.CreateInput{Name: "A", Phone: "+1", Email: "a@x.com", Password: "pw", Role: user.RoleAdmin},
		},
		{
			name: "assistante",
			in:   user.CreateInput{Name: "B", Phone: "+1", Email: "b@x.com", Password: "pw", Role: user.RoleAssistante},
		},
		{
			name:    "superadmin is not registrable",
			in:      user.CreateInput{Name: "C", Phone: "+1", Email: "c@x.com", Password: "pw", Role: user.RoleSuperadmin},
			wantErr: user.ErrInvalidRole,
		},
		{
			name:    "unknown role",
			in:      user.CreateInput{Name: "C", Phone: "+1", Email: "c@x.com", Password: "pw", Role: "doctor"},
			wantErr: user.ErrInvalidRole,
		},
		{
			name:    "blank name",
			in:      user.CreateInput{Name: "  ", Phone: "+1", Email: "d@x.com", Password: "pw", Role: user.RoleAdmin},
			wantErr: user.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)

			u, err := s.Create(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if u.ID == 0 {
				t.Fatalf("expected assigned id")
			}
			if u.PasswordHash != "h:pw" {
				t.Fatalf("password must be stored hashed, got %q", u.PasswordHash)
			}
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	in := user.CreateInput{Name: "A", Phone: "+1", Email: "a@x.com", Password: "pw", Role: user.RoleAdmin}
	if _, err := s.Create(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	if _, err := s.Create(ctx, in); !errors.Is(err, user.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestListStripsHashes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedSuperadmin(t, s)

	users, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if users[0].PasswordHash != "" {
		t.Fatalf("hash leaked through List")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)

	created, err := s.Create(ctx, user.CreateInput{Name: "A", Phone: "+1", Email: "a@x.com", Password: "pw", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("profile only keeps password and role", func(t *testing.T) {
		err := s.Update(ctx, created.ID, user.UpdateInput{Name: "A2", Phone: "+2", Email: "a@x.com"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}

		got, _ := repo.GetByID(ctx, created.ID)
		if got.Name != "A2" || got.PasswordHash != "h:pw" || got.Role != user.RoleAdmin {
			t.Fatalf("unexpected row %+v", got)
		}
	})

	t.Run("password and role", func(t *testing.T) {
		pw := "new"
		role := user.RoleAssistante
		err := s.Update(ctx, created.ID, user.UpdateInput{Name: "A2", Phone: "+2", Email: "a@x.com", Password: &pw, Role: &role})
		if err != nil {
			t.Fatalf("update: %v", err)
		}

		got, _ := repo.GetByID(ctx, created.ID)
		if got.PasswordHash != "h:new" || got.Role != user.RoleAssistante {
			t.Fatalf("unexpected row %+v", got)
		}
	})

	t.Run("promotion to superadmin is refused", func(t *testing.T) {
		role := user.RoleSuperadmin
		err := s.Update(ctx, created.ID, user.UpdateInput{Name: "A", Phone: "+1", Email: "a@x.com", Role: &role})
		if !errors.Is(err, user.ErrProtected) {
			t.Fatalf("got %v, want ErrProtected", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		role := user.Role("doctor")
		err := s.Update(ctx, created.ID, user.UpdateInput{Name: "A", Phone: "+1", Email: "a@x.com", Role: &role})
		if !errors.Is(err, user.ErrInvalidRole) {
			t.Fatalf("got %v, want ErrInvalidRole", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		err := s.Update(ctx, 999, user.UpdateInput{Name: "A", Phone: "+1", Email: "z@x.com"})
		if !errors.Is(err, user.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	a, _ := s.Create(ctx, user.CreateInput{Name: "A", Phone: "+1", Email: "a@x.com", Password: "pw", Role: user.RoleAdmin})
	_, _ = s.Create(ctx, user.CreateInput{Name: "B", Phone: "+1", Email: "b@x.com", Password: "pw", Role: user.RoleAdmin})

	err := s.Update(ctx, a.ID, user.UpdateInput{Name: "A", Phone: "+1", Email: "b@x.com"})
	if !errors.Is(err, user.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestReservedAccountIsProtected(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	root := seedSuperadmin(t, s)

	admin := user.RoleAdmin
	if err := s.Update(ctx, root.ID, user.UpdateInput{Name: "R", Phone: "1", Email: reserved, Role: &admin}); !errors.Is(err, user.ErrProtected) {
		t.Fatalf("demotion: got %v, want ErrProtected", err)
	}

	if err := s.Update(ctx, root.ID, user.UpdateInput{Name: "R", Phone: "1", Email: "other@x.com"}); !errors.Is(err, user.ErrProtected) {
		t.Fatalf("email change: got %v, want ErrProtected", err)
	}

	if err := s.Update(ctx, root.ID, user.UpdateInput{Name: "Renamed", Phone: "1", Email: reserved}); err != nil {
		t.Fatalf("profile edit of reserved account should pass, got %v", err)
	}

	if err := s.Delete(ctx, root.ID); !errors.Is(err, user.ErrProtected) {
		t.Fatalf("delete: got %v, want ErrProtected", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	u, _ := s.Create(ctx, user.CreateInput{Name: "A", Phone: "+1", Email: "a@x.com", Password: "pw", Role: user.RoleAdmin})

	if err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestEnsureSuperadminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seed := Seed{Email: reserved, Password: "pw", Name: "Root", Phone: "0"}

	created, err := s.EnsureSuperadmin(ctx, seed)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}

	seed.Password = "other"
	created, err = s.EnsureSuperadmin(ctx, seed)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}

	users, _ := s.List(ctx)
	n := 0
	for _, u := range users {
		if u.Role == user.RoleSuperadmin {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("got %d superadmins, want 1", n)
	}

	got, _ := s.repo.GetByEmail(ctx, reserved)
	if got.PasswordHash != "h:pw" {
		t.Fatalf("existing superadmin was overwritten")
	}
}
