package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
)

// Middleware rejects requests without a valid bearer token.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respond.Error(w, r, ErrUnauthenticated.WithCause(errNoToken))
				return
			}

			p, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			respond.Error(w, r, ErrUnauthenticated)
			return
		}

		if !p.IsAdmin() {
			respond.Error(w, r, ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CallbackToken guards server-to-server callbacks with a shared token sent
// in X-Callback-Token.
func CallbackToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Callback-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				respond.Error(w, r, ErrUnauthenticated.WithMessage("invalid callback token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
