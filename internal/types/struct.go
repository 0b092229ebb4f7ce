package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Offset is an optional explicit byte offset for a struct member.
//
// The zero value means "derive the offset naturally". An explicit offset can
// only move a member later than its naturally rounded position, never earlier.
type Offset struct {
	Bytes uint64
	Set   bool
}

// At returns an explicit offset of n bytes.
func At(n uint64) Offset {
	return Offset{Bytes: n, Set: true}
}

// Natural returns the "no override" offset.
func Natural() Offset {
	return Offset{}
}

// Value returns the explicit offset, or 0 when none was given.
func (o Offset) Value() uint64 {
	if !o.Set {
		return 0
	}
	return o.Bytes
}

// Member describes a single member inside a struct type.
type Member struct {
	Type   TypeID
	Offset Offset
}

// Field is shorthand for a naturally placed member.
func Field(t TypeID) Member {
	return Member{Type: t}
}

// FieldAt is shorthand for a member pinned at an explicit offset.
func FieldAt(t TypeID, off uint64) Member {
	return Member{Type: t, Offset: At(off)}
}

// StructInfo stores the member list of a struct type.
type StructInfo struct {
	Members []Member
}

// Struct interns a struct with the given ordered members. Two structs with
// the same member sequence (types and explicit offsets) share a TypeID.
func (in *Interner) Struct(members ...Member) TypeID {
	for _, m := range members {
		if _, ok := in.Lookup(m.Type); !ok {
			panic(fmt.Errorf("types: struct member type#%d is not interned", m.Type))
		}
	}
	key := shapeKey(members)
	if id, ok := in.shapes[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, StructInfo{Members: cloneMembers(members)})
	id := in.internRaw(Type{Kind: KindStruct, Payload: slot})
	in.shapes[key] = id
	return id
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// Members returns the member list of a struct. The returned slice must not
// be modified.
func (in *Interner) Members(typeID TypeID) []Member {
	info := in.structInfo(typeID)
	if info == nil {
		return nil
	}
	return info.Members
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func shapeKey(members []Member) string {
	var sb strings.Builder
	for _, m := range members {
		fmt.Fprintf(&sb, "%d", m.Type)
		if m.Offset.Set {
			fmt.Fprintf(&sb, "@%d", m.Offset.Bytes)
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

func cloneMembers(members []Member) []Member {
	if len(members) == 0 {
		return nil
	}
	out := make([]Member, len(members))
	copy(out, members)
	return out
}
