package sysv

import (
	"fmt"

	"sysvabi/internal/types"
)

// InvariantError is the panic value raised when the classifier reaches a
// state the algorithm rules out, or a caller breaks a precondition such as
// matching value and type counts. It signals a bug, never a valid input.
type InvariantError struct {
	Type   types.TypeID
	Detail string
}

func (e *InvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Type == types.NoTypeID {
		return "sysv: " + e.Detail
	}
	return fmt.Sprintf("sysv: %s (type#%d)", e.Detail, e.Type)
}

func invariant(id types.TypeID, format string, args ...any) {
	panic(&InvariantError{Type: id, Detail: fmt.Sprintf(format, args...)})
}
