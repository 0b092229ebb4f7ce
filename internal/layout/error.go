package layout

import (
	"fmt"

	"sysvabi/internal/types"
)

// ContractErrorKind enumerates Type Model contract violations.
type ContractErrorKind uint8

const (
	// ContractUnknownType indicates a TypeID the interner never handed out.
	ContractUnknownType ContractErrorKind = iota + 1
	ContractUnknownKind
	ContractUnknownIntKind
	ContractUnknownFloatKind
	ContractBadAlign
	ContractSizeOverflow
)

func (k ContractErrorKind) String() string {
	switch k {
	case ContractUnknownType:
		return "unknown type"
	case ContractUnknownKind:
		return "unknown type kind"
	case ContractUnknownIntKind:
		return "unknown integer kind"
	case ContractUnknownFloatKind:
		return "unknown floating point kind"
	case ContractBadAlign:
		return "alignment is not a power of two"
	case ContractSizeOverflow:
		return "type size overflows"
	default:
		return fmt.Sprintf("contract kind=%d", uint8(k))
	}
}

// ContractError is the panic value raised when a type violates the Type
// Model's invariants. It is never returned as an error: the input is a
// programmer error and layout cannot continue.
type ContractError struct {
	Kind  ContractErrorKind
	Type  types.TypeID
	Value uint64 // offending alignment, for ContractBadAlign
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind == ContractBadAlign {
		return fmt.Sprintf("layout: %s: %d (type#%d)", e.Kind, e.Value, e.Type)
	}
	return fmt.Sprintf("layout: %s (type#%d)", e.Kind, e.Type)
}

func violate(kind ContractErrorKind, id types.TypeID) {
	panic(&ContractError{Kind: kind, Type: id})
}
