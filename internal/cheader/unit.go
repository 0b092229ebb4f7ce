package cheader

import (
	"fmt"

	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

// Pos is a source location inside a header.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// NamedType is a struct declared in the header, by tag ("struct point") or
// typedef name.
type NamedType struct {
	Name string
	Type types.TypeID
	Pos  Pos
	// CSize and CAlign are what the C front end computed; they can differ
	// from the layout engine for 16-byte arrays inside structs.
	CSize  uint64
	CAlign uint64
}

// NamedFunc is a function prototype declared in the header.
type NamedFunc struct {
	Name string
	Fn   sysv.FunctionType
	Pos  Pos
}

// Unit is everything extracted from one header. All TypeIDs belong to
// Types.
type Unit struct {
	Path    string
	Types   *types.Interner
	Records []NamedType
	Funcs   []NamedFunc
}

// Func returns the prototype called name.
func (u *Unit) Func(name string) (NamedFunc, bool) {
	for _, f := range u.Funcs {
		if f.Name == name {
			return f, true
		}
	}
	return NamedFunc{}, false
}

// UnsupportedError reports a declaration the Type Model cannot represent.
type UnsupportedError struct {
	Pos    Pos
	Name   string
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Name, e.Reason)
}
