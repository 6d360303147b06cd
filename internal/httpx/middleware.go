package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/auth"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
)

type ctxKey struct{}

// authenticate resolves the bearer token into an Actor and stores it in the
// request context. The market core trusts this (user id, role) pair.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(raw, "Bearer ")
		actor, err := auth.ValidateToken(h.JWTSecret, token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, actor)))
	})
}

func actorFrom(r *http.Request) market.Actor {
	actor, _ := r.Context().Value(ctxKey{}).(market.Actor)
	return actor
}
