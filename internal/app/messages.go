package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/transfer"
)

// IsUserError reports whether err is caused by the request rather than by
// the system.
func IsUserError(err error) bool {
	var (
		verr *models.ValidationError
		cerr *models.ConstraintError
	)
	return errors.Is(err, models.ErrNotFound) ||
		errors.As(err, &verr) ||
		errors.As(err, &cerr) ||
		errors.Is(err, transfer.ErrInput)
}

// Message renders err for the person at the keyboard. Storage failures get
// a generic message; the details are in the log.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		nf   *models.NotFoundError
		verr *models.ValidationError
		cerr *models.ConstraintError
	)
	switch {
	case errors.As(err, &nf):
		return fmt.Sprintf("%s #%d was not found.", capitalize(nf.Entity), nf.ID)
	case errors.As(err, &verr):
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		problems := make([]string, len(keys))
		for i, k := range keys {
			problems[i] = k + " " + verr.Fields[k]
		}
		return fmt.Sprintf("Invalid %s data: %s.", verr.Entity, strings.Join(problems, "; "))
	case errors.As(err, &cerr):
		return fmt.Sprintf("Not allowed: %s #%d %s.", cerr.Entity, cerr.ID, cerr.Reason)
	case errors.Is(err, transfer.ErrInput):
		return capitalize(err.Error()) + "."
	case errors.Is(err, context.DeadlineExceeded):
		return "The operation timed out. Nothing was changed."
	case errors.Is(err, context.Canceled):
		return "The operation was cancelled. Nothing was changed."
	default:
		return "Storage failure, nothing was changed. See the log for details."
	}
}

// FieldErrors returns the per-field problems of a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
