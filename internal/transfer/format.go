package transfer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matthieukhl/orderdesk/internal/models"
)

type Format string

// ErrInput marks a problem with the file or the requested format or entity,
// as opposed to a storage failure.
var ErrInput = errors.New("invalid transfer input")

// inputError wraps ErrInput; %w verbs in format keep the cause reachable.
func inputError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInput}, args...)...)
}

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ResolveFormat picks the file format. An explicit name wins; otherwise the
// file extension decides.
func ResolveFormat(path, explicit string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(explicit))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "":
		return "", inputError("cannot tell the format of %q, use csv, json or yaml", path)
	default:
		return "", inputError("unsupported format %q, use csv, json or yaml", name)
	}
}

// ParseEntity accepts singular or plural entity names ("order", "orders").
func ParseEntity(s string) (string, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case models.EntityCustomer:
		return models.EntityCustomer, nil
	case models.EntityProduct:
		return models.EntityProduct, nil
	case models.EntityOrder:
		return models.EntityOrder, nil
	default:
		return "", inputError("unknown entity %q, use customers, products or orders", s)
	}
}
