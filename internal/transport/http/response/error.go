package response

import (
	"errors"
	"net/http"

	"github.com/lanehart/authd/internal/domain"
	pkgctx "github.com/lanehart/authd/internal/pkg/context"
)

// errorBody is the envelope every failed request returns.
type errorBody struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError maps a domain error onto the HTTP error envelope. Unknown
// error types are reported as a generic 500 without leaking detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{
		Message:   "internal server error",
		Code:      "internal",
		RequestID: pkgctx.GetRequestID(r.Context()),
	}
	status := http.StatusInternalServerError

	var derr *domain.Error
	if errors.As(err, &derr) {
		status = statusFromKind(derr.Kind)
		body.Message = derr.Message
		body.Code = derr.Code
		if status != http.StatusInternalServerError {
			body.Meta = derr.Meta
		}
	}

	WriteJSON(w, status, body)
}
