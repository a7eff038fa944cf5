package substitute

import (
	"errors"
	"fmt"
)

// ErrSubstitution is matched (errors.Is) by every engine-internal fault.
var ErrSubstitution = errors.New("substitution failed")

// SubstitutionError reports a value that could not be formatted.
// Missing variables never produce it.
type SubstitutionError struct {
	TemplateLength int
	VariableCount  int
	Placeholder    string
	Cause          error
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("substitution failed for {{%s}} (template length %d, %d variables): %v",
		e.Placeholder, e.TemplateLength, e.VariableCount, e.Cause)
}

func (e *SubstitutionError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrSubstitution) hold.
func (e *SubstitutionError) Is(target error) bool { return target == ErrSubstitution }
