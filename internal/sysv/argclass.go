package sysv

import "fmt"

// ArgClass is the register class assigned to one eightbyte.
type ArgClass uint8

const (
	// NoClass is the merge identity; it is the zero value so an empty
	// Classification starts out unclassified.
	NoClass ArgClass = iota
	Integer
	SSE
	SSEUp
	X87
	X87Up
	ComplexX87
	// Memory absorbs every other class.
	Memory
)

// AllClasses lists every ArgClass.
var AllClasses = [...]ArgClass{NoClass, Integer, SSE, SSEUp, X87, X87Up, ComplexX87, Memory}

func (c ArgClass) String() string {
	switch c {
	case NoClass:
		return "NO_CLASS"
	case Integer:
		return "INTEGER"
	case SSE:
		return "SSE"
	case SSEUp:
		return "SSEUP"
	case X87:
		return "X87"
	case X87Up:
		return "X87UP"
	case ComplexX87:
		return "COMPLEX_X87"
	case Memory:
		return "MEMORY"
	default:
		return fmt.Sprintf("ArgClass(%d)", uint8(c))
	}
}

// isX87Family reports the extended-precision classes, which cannot share an
// eightbyte with anything else.
func (c ArgClass) isX87Family() bool {
	return c == X87 || c == X87Up || c == ComplexX87
}

// Merge combines two classes contributed to the same eightbyte.
func Merge(first, second ArgClass) ArgClass {
	switch {
	case first == second:
		return first
	case first == NoClass:
		return second
	case second == NoClass:
		return first
	case first == Memory || second == Memory:
		return Memory
	case first == Integer || second == Integer:
		return Integer
	case first.isX87Family() || second.isX87Family():
		return Memory
	default:
		return SSE
	}
}
