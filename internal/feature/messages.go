package feature

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/shared"
)

// ErrPermissionDenied is returned before any backend call when the role
// lacks the module capability.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError carries form messages.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// User facing texts.
const (
	MsgPermissionDenied = "You do not have permission to access this section."
	MsgUnreachable      = "Could not reach the clinical service. Check your connection and try again."
	MsgTimeout          = "The clinical service took too long to respond. Try again in a moment."
	MsgSessionExpired   = "Your session has expired. Please sign in again."
	MsgSignInRequired   = "Please sign in to continue."
	MsgDuplicate        = "This form was already submitted."
	MsgNothingToExport  = "There is no data to export."
	MsgPrintPending     = "Printing and PDF export are not available yet."
	MsgUnexpected       = "An unexpected error occurred. Try again later."
)

// UserMessage derives the text shown to staff for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var valErr *ValidationError
	var rej *apiclient.RejectionError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.As(err, &valErr):
		return strings.Join(valErr.Messages, " ")
	case errors.Is(err, shared.ErrDuplicateSubmission):
		return MsgDuplicate
	case errors.Is(err, ErrNothingToExport):
		return MsgNothingToExport
	case errors.Is(err, context.DeadlineExceeded), apiclient.IsTimeout(err):
		return MsgTimeout
	case errors.Is(err, apiclient.ErrUnreachable):
		return MsgUnreachable
	case errors.As(err, &rej):
		return rejectionMessage(rej)
	default:
		return MsgUnexpected
	}
}

func rejectionMessage(rej *apiclient.RejectionError) string {
	detail := rej.Detail()
	generic := fmt.Sprintf("HTTP %d", rej.Status)
	if detail == generic {
		detail = ""
	}
	switch {
	case rej.Status == http.StatusUnauthorized:
		return MsgSessionExpired
	case rej.Status == http.StatusForbidden && detail == "":
		return "The clinical service denied this action."
	case rej.Status == http.StatusNotFound && detail == "":
		return "The requested record was not found."
	case rej.Status >= 500:
		if detail != "" && len(detail) <= 200 && !strings.Contains(detail, "<") {
			return fmt.Sprintf("The clinical service failed to process the request (%s): %s", generic, detail)
		}
		return fmt.Sprintf("The clinical service failed to process the request (%s).", generic)
	case detail != "":
		return detail
	default:
		return fmt.Sprintf("The clinical service rejected the request (%s).", generic)
	}
}
