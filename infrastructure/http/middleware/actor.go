package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labtrack/labtrack/infrastructure/http/response"
)

// ActorHeader names the user on whose behalf a request acts. It identifies,
// it does not authenticate.
const ActorHeader = "X-User-ID"

type actorKey struct{}

// ActorMiddleware reads the acting user id. Requests without the header act
// as defaultActor; a malformed header is rejected.
func ActorMiddleware(defaultActor int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := defaultActor
			if raw := r.Header.Get(ActorHeader); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					response.BadRequest(w, "Invalid "+ActorHeader+" header")
					return
				}
				actor = id
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores the acting user id in ctx
func WithActor(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// Actor retrieves the acting user id, zero when absent
func Actor(ctx context.Context) int64 {
	if id, ok := ctx.Value(actorKey{}).(int64); ok {
		return id
	}
	return 0
}
