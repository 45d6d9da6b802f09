package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
	"github.com/geocoder89/clinicdesk/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	usersEmailConstraint      = "users_email_key"
	usersSuperadminConstraint = "users_single_superadmin"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the row and relies on the unique constraint, not a pre-check, to detect duplicates.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO users (name, phone, email, password_hash, role)
			 VALUES ($1,$2,$3,$4,$5)
			 RETURNING id`,
			u.Name, u.Phone, u.Email, u.PasswordHash, string(u.Role),
		).Scan(&u.ID)
	})

	if err != nil {
		return user.User{}, mapUserWriteErr(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id",
		`SELECT id, name, phone, email, password_hash, role FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email",
		`SELECT id, name, phone, email, password_hash, role FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) GetByEmailAndRole(ctx context.Context, email string, role user.Role) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email_and_role",
		`SELECT id, name, phone, email, password_hash, role FROM users WHERE email = $1 AND role = $2`,
		email, string(role))
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, args ...any) (user.User, error) {
	var u user.User
	var role string

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(
			&u.ID,
			&u.Name,
			&u.Phone,
			&u.Email,
			&u.PasswordHash,
			&role,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	u.Role, err = user.ParseRole(role)
	if err != nil {
		return user.User{}, fmt.Errorf("user %d has unknown role %q: %w", u.ID, role, err)
	}

	return u, nil
}

// List never selects the password hash.
func (r *UsersRepo) List(ctx context.Context) (users []user.User, err error) {
	var rows pgx.Rows

	err = r.observe("users.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `SELECT id, name, phone, email, role FROM users ORDER BY id ASC`)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		var u user.User
		var role string

		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &role); err != nil {
			return nil, err
		}

		u.Role, err = user.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("user %d has unknown role %q: %w", u.ID, role, err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, f user.UpdateFields) error {
	sets := []string{"name = $2", "phone = $3", "email = $4", "updated_at = NOW()"}
	args := []any{id, f.Name, f.Phone, f.Email}

	if f.PasswordHash != nil {
		args = append(args, *f.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}

	if f.Role != nil {
		args = append(args, string(*f.Role))
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`

	var tag pgconn.CommandTag

	err := r.observe("users.update", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, query, args...)
		return e
	})

	if err != nil {
		return mapUserWriteErr(err)
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := r.observe("users.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func mapUserWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case usersEmailConstraint:
			return user.ErrDuplicateEmail
		case usersSuperadminConstraint:
			return user.ErrProtected
		}
	}
	return err
}
