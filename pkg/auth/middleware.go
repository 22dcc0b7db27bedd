package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/taskmanager/pkg/httpx"
	"github.com/ghuser/taskmanager/pkg/logger"
)

const sessionName = "taskmanager_session"
const sessionActorKey = "user_id"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the actor's user id, and injects it into
// the request context. Returns 401 Unauthorized if the session is missing,
// invalid, or lacks a user id.
//
// After this middleware, handlers can safely call auth.ActorFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			actor, ok := session.Values[sessionActorKey].(string)
			if !ok || actor == "" {
				log.WarnContext(r.Context(), "session missing user_id")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSessionActor is the non-enforcing variant of RequireAuth: when a valid
// session carries a user id the actor is injected into the request context,
// otherwise the request proceeds without one. Use it on routes that attribute
// actions to an actor but do not gate on authentication.
func WithSessionActor(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.DebugContext(r.Context(), "no usable session cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if actor, ok := session.Values[sessionActorKey].(string); ok && actor != "" {
				r = r.WithContext(WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}
