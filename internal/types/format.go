package types

import (
	"fmt"
	"strings"
)

// String renders a TypeID in a compact C-like notation, e.g.
// "struct { int64; int32 @8 }" or "[5 x int64]".
func (in *Interner) String(id TypeID) string {
	var sb strings.Builder
	in.writeType(&sb, id)
	return sb.String()
}

func (in *Interner) writeType(sb *strings.Builder, id TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		fmt.Fprintf(sb, "type#%d", id)
		return
	}
	switch tt.Kind {
	case KindVoid:
		sb.WriteString("void")
	case KindPointer:
		sb.WriteString("ptr")
	case KindInteger:
		sb.WriteString(tt.Int.String())
	case KindFloat:
		sb.WriteString(tt.Float.String())
	case KindComplex:
		sb.WriteString("_Complex ")
		sb.WriteString(tt.Float.String())
	case KindArray:
		fmt.Fprintf(sb, "[%d x ", tt.Count)
		in.writeType(sb, tt.Elem)
		sb.WriteByte(']')
	case KindStruct:
		members := in.Members(id)
		if len(members) == 0 {
			sb.WriteString("struct {}")
			return
		}
		sb.WriteString("struct { ")
		for i, m := range members {
			if i > 0 {
				sb.WriteString("; ")
			}
			in.writeType(sb, m.Type)
			if m.Offset.Set {
				fmt.Fprintf(sb, " @%d", m.Offset.Bytes)
			}
		}
		sb.WriteString(" }")
	default:
		sb.WriteString(tt.Kind.String())
	}
}
