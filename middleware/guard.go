package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

type handleResultContextKey struct{}

// ResultFromContext returns the lifecycle result stored by [Touch].
func ResultFromContext(ctx context.Context) (*goSession.HandleResult, bool) {
	res, ok := ctx.Value(handleResultContextKey{}).(*goSession.HandleResult)
	return res, ok
}

// Touch runs the session lifecycle for the bearer token on every request.
// Only requests whose session was refreshed reach next.
func Touch(h *goSession.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := h.HandleAccessTokenWithResult(r.Context(), token)
			if err != nil {
				status := statusFor(err)
				http.Error(w, http.StatusText(status), status)
				return
			}
			if res.Outcome != goSession.OutcomeRefreshed {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), handleResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, goSession.ErrTokenInvalid),
		errors.Is(err, goSession.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
