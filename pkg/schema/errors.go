package schema

import (
	"fmt"
	"strings"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string           `json:"field"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Errors represents multiple field validation failures.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// HasKind reports whether any error is of the given kind.
func (e Errors) HasKind(kind domain.ErrorKind) bool {
	for _, err := range e {
		if err.Kind == kind {
			return true
		}
	}
	return false
}
