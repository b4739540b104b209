package middleware

import (
	"context"
	"net/http"

	"github.com/duetap/duetap-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const clientIDKey contextKey = "client_id"

// AuthRequired rejects requests without a valid access token and stashes the
// token's client_id claim in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "missing token")
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.Unauthorized(w, "invalid token")
				return
			}

			clientID, ok := claims["client_id"].(string)
			if !ok || clientID == "" {
				response.Unauthorized(w, "token has no client context")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ClientIDFromContext returns the authenticated client ID, if any.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientIDKey).(string)
	return clientID, ok
}
