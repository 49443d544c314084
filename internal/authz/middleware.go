package authz

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

// Verifier resolves a bearer token to a principal.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// Authenticate puts the principal of the request's bearer token on the
// request context. Requests without a valid token continue as anonymous.
func Authenticate(v Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			p := AnonymousPrincipal
			if token, ok := bearerToken(r); ok {
				verified, err := v.Verify(token)
				if err != nil {
					log.Debug("Rejected bearer token", zap.Error(err))
				} else {
					p = verified
				}
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), p)))
		}
		return http.HandlerFunc(fn)
	}
}

// Require rejects requests whose principal lacks the capability before
// anything else about the request is looked at.
func Require(required Capability, eh perrors.HTTPErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if err := Authorize(r.Context(), required); err != nil {
				eh.HandleHTTPError(r.Context(), err, w)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
