package auth

import (
	"errors"

	"github.com/lanehart/authd/internal/domain"
)

// domainCode labels an error for audit event fields. Wrapped domain
// errors unwrap to their stable code; anything else gets a generic
// label so raw driver messages never reach the audit trail.
func domainCode(err error) string {
	if err == nil {
		return ""
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "non_domain_error"
}
