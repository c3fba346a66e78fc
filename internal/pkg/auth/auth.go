package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"swap_store/internal/models"
)

// contextKey is a custom type used for storing values in a context without risking collisions.
type contextKey string

// contextActor is the key under which the authenticated actor is stored.
const contextActor contextKey = "contextActor"

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, contextActor, actor)
}

// ActorFrom returns the authenticated actor stored in ctx, if any.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(contextActor).(models.Actor)
	return actor, ok
}

// CheckJWTMiddleware rejects requests without a valid Bearer token with 401 and stores the
// token's actor in the request context otherwise.
func CheckJWTMiddleware(secret []byte) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, "missing auth header", http.StatusUnauthorized)
				return
			}

			claims, ok := parseHeader(secret, authHeader)
			if !ok {
				writeErrorResponse(w, "invalid token", http.StatusUnauthorized)
				return
			}

			h.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.Actor())))
		}
		return http.HandlerFunc(fn)
	}
}

// OptionalJWTMiddleware stores the actor of a valid Bearer token in the request context and
// lets every request through. Invalid tokens are treated as anonymous.
func OptionalJWTMiddleware(secret []byte) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := parseHeader(secret, r.Header.Get("Authorization")); ok {
				r = r.WithContext(WithActor(r.Context(), claims.Actor()))
			}
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// RequireAdmin rejects authenticated non-admin callers with 403.
// It must run after CheckJWTMiddleware.
func RequireAdmin(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			writeErrorResponse(w, "missing auth header", http.StatusUnauthorized)
			return
		}
		if !actor.IsAdmin() {
			writeErrorResponse(w, "admin role required", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func parseHeader(secret []byte, header string) (*Claims, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := ParseToken(secret, parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// writeErrorResponse writes a JSON-formatted error response to the HTTP response writer.
func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo, Code: statusCode})
}
