package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/motormania/motormania-go/internal/token"
)

type contextKey string

const identityKey contextKey = "identity"

// JWTAuth returns middleware that validates the bearer access token and puts
// the embedded identity on the request context. Requests without a valid
// token are rejected with 401 before they reach the handler.
func JWTAuth(validator *token.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := token.FromBearer(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, err)
				return
			}

			identity, err := validator.ValidateAccess(raw)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (token.Identity, bool) {
	id, ok := ctx.Value(identityKey).(token.Identity)
	return id, ok
}

func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": err.Error(),
	})
}
