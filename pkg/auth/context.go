package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const actorKey contextKey = "actor"

// ErrActorNotFound is returned when no actor exists in the request context.
// Handlers should return 401 when this error occurs on a protected route.
var ErrActorNotFound = errors.New("actor not found in context")

// ActorFromCtx extracts the authenticated actor (external user id) from the
// request context. Returns "" and ErrActorNotFound for anonymous requests.
// The actor is attribution only — delete audit logs and event metadata — and
// never feeds business decisions in the services.
func ActorFromCtx(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return "", ErrActorNotFound
	}
	return actor, nil
}

// WithActor returns a new context with the given actor attached.
// Used by authentication middleware after validating the session.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
