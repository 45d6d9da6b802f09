package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
)

// UsersRepo mirrors the Postgres constraints: unique email and a single superadmin row.
type UsersRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == u.Email {
			return user.User{}, user.ErrDuplicateEmail
		}
		if u.Role == user.RoleSuperadmin && existing.Role == user.RoleSuperadmin {
			return user.User{}, user.ErrProtected
		}
	}

	r.seq++
	u.ID = r.seq
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByEmailAndRole(ctx context.Context, email string, role user.Role) (user.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}
	if u.Role != role {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, f user.UpdateFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	for otherID, other := range r.items {
		if otherID == id {
			continue
		}
		if other.Email == f.Email {
			return user.ErrDuplicateEmail
		}
		if f.Role != nil && *f.Role == user.RoleSuperadmin && other.Role == user.RoleSuperadmin {
			return user.ErrProtected
		}
	}

	u.Name = f.Name
	u.Phone = f.Phone
	u.Email = f.Email

	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
	}
	if f.Role != nil {
		u.Role = *f.Role
	}

	r.items[id] = u

	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
