package actorctx

import (
	"context"

	"github.com/geocoder89/clinicdesk/internal/domain/user"
)

type ctxKey struct{}

// Actor is the authenticated caller attached by the access guard.
type Actor struct {
	UserID int64
	Role   user.Role
}

func With(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.UserID > 0
}
