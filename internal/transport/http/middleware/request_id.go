package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgctx "github.com/lanehart/authd/internal/pkg/context"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns every request an ID, honoring one supplied by a
// trusted upstream proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(pkgctx.WithRequestID(r.Context(), id)))
	})
}
