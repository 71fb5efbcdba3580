package constituency

import (
	"errors"

	"github.com/EmpoweredVote/constituency-core/internal/reports"
)

var (
	// ErrReportNotFound is the store's not-found error, so errors.Is matches
	// either name.
	ErrReportNotFound = reports.ErrNotFound

	ErrAssignmentPending = errors.New("constituency assignment is pending manual review")
	ErrReprocessRunning  = errors.New("reprocess already running")
)

// ValidationError rejects override input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
