package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/lanehart/authd/internal/domain"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// DecodeJSON decodes the request body into dst. The body must hold
// exactly one JSON value; trailing garbage is rejected.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}
	if dec.More() {
		return domain.ErrInvalidJSON(nil)
	}
	// drain to allow connection reuse
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}
