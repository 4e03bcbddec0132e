package domain

import (
	"fmt"
	"strings"
)

// Conflict records a requested spec that the linked version does not satisfy.
type Conflict struct {
	Package   string
	Required  string
	Installed string
}

// String returns a single line description of the conflict.
func (c Conflict) String() string {
	return fmt.Sprintf("%s: requires %s, but %s is installed", c.Package, c.Required, c.Installed)
}

// ConflictError carries every conflict found for one request.
type ConflictError struct {
	Environment string
	Conflicts   []Conflict
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConflict.Error())
	if e.Environment != "" {
		fmt.Fprintf(&b, " in environment %q", e.Environment)
	}
	for _, c := range e.Conflicts {
		b.WriteString("\n  - ")
		b.WriteString(c.String())
	}
	return b.String()
}

// Is makes errors.Is(err, ErrConflict) hold for every ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
