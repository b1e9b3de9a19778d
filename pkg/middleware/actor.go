package middleware

import (
	"context"
	"net/http"

	"hotelier/pkg/logger"
	"hotelier/pkg/model"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
	HeaderActorRole = "X-Actor-Role"
)

const ActorKey contextKey = "actor"

// Actor resolves the acting staff member from request headers set by the
// authentication gateway and stores it on the context. Requests without
// an actor ID or with an unknown role are rejected before they reach a
// handler.
func Actor(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := r.Header.Get(HeaderActorID)
			if actorID == "" {
				rejectActor(w, log, r, "missing "+HeaderActorID+" header")
				return
			}

			role, ok := model.ParseRole(r.Header.Get(HeaderActorRole))
			if !ok {
				rejectActor(w, log, r, "unknown role "+r.Header.Get(HeaderActorRole))
				return
			}

			actor := model.Actor{
				ID:   actorID,
				Name: r.Header.Get(HeaderActorName),
				Role: role,
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor stored by the Actor middleware.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(model.Actor)
	return actor, ok
}

func rejectActor(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			requestID = id
		}
	}

	log.Warn("Actor resolution failed",
		"request_id", requestID,
		"reason", reason,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Actor identification required"}`))
}
