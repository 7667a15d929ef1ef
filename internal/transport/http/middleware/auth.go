package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/domain"
)

// WriteErrFunc writes a domain error as an HTTP response. Injected so
// the middleware layer does not depend on the response package.
type WriteErrFunc func(w http.ResponseWriter, r *http.Request, err error)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.TokenClaims, error)
}

// UserLoader fetches the current user record behind a token.
type UserLoader interface {
	GetUserByID(ctx context.Context, userID string) (domain.User, error)
}

// RequireAuth gates a route behind a bearer token. A missing
// Authorization header is a 403; a present but unusable token is a 401.
// The user row is re-read on every request so deactivating an account
// revokes its outstanding tokens immediately.
func RequireAuth(verifier TokenVerifier, users UserLoader, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			u, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				// Token holder no longer maps to a live account.
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}
			if !u.Active {
				writeErr(w, r, domain.ErrAccountInactive())
				return
			}

			ctx := WithUser(r.Context(), u.ID, u.Email, u.Superuser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser must run after RequireAuth.
func RequireSuperuser(writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSuperuserFromContext(r.Context()) {
				writeErr(w, r, domain.ErrSuperuserRequired())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", domain.ErrAuthHeaderMissing()
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenInvalid()
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.ErrTokenMissing()
	}
	return token, nil
}
