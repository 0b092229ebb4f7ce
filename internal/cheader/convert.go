package cheader

import (
	"fmt"

	"fortio.org/safecast"
	"modernc.org/cc/v4"

	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

type converter struct {
	types   *types.Interner
	b       types.Builtins
	structs map[*cc.StructType]types.TypeID
	records map[string]struct{}
}

func newConverter(in *types.Interner) *converter {
	return &converter{
		types:   in,
		b:       in.Builtins(),
		structs: make(map[*cc.StructType]types.TypeID),
		records: make(map[string]struct{}),
	}
}

func posOf(n cc.Node) Pos {
	p := n.Position()
	return Pos{File: p.Filename, Line: p.Line, Col: p.Column}
}

// declaration records tagged struct definitions, struct typedefs and
// function prototypes. Variables are skipped.
func (c *converter) declaration(u *Unit, decl *cc.Declaration) error {
	for ds := decl.DeclarationSpecifiers; ds != nil; ds = ds.DeclarationSpecifiers {
		if ds.Case != cc.DeclarationSpecifiersTypeSpec || ds.TypeSpecifier == nil {
			continue
		}
		sou := ds.TypeSpecifier.StructOrUnionSpecifier
		if ds.TypeSpecifier.Case != cc.TypeSpecifierStructOrUnion || sou == nil {
			continue
		}
		if sou.Case != cc.StructOrUnionSpecifierDef {
			continue
		}
		tag := sou.Token.SrcStr()
		pos := posOf(sou)
		if tag == "" {
			// Anonymous; named by a typedef below, if at all.
			continue
		}
		keyword := "struct "
		if sou.Type().Kind() == cc.Union {
			keyword = "union "
		}
		if err := c.record(u, keyword+tag, sou.Type(), pos); err != nil {
			return err
		}
	}

	for l := decl.InitDeclaratorList; l != nil; l = l.InitDeclaratorList {
		if l.InitDeclarator == nil || l.InitDeclarator.Declarator == nil {
			continue
		}
		d := l.InitDeclarator.Declarator
		switch {
		case d.IsTypename():
			kind := d.Type().Kind()
			if kind == cc.Struct || kind == cc.Union {
				if err := c.record(u, d.Name(), d.Type(), posOf(d)); err != nil {
					return err
				}
			}
		case d.Type().Kind() == cc.Function:
			if err := c.function(u, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *converter) record(u *Unit, name string, t cc.Type, pos Pos) error {
	if _, dup := c.records[name]; dup {
		return nil
	}
	id, err := c.typeOf(t, pos, name)
	if err != nil {
		return err
	}
	size, err := safecast.Conv[uint64](t.Size())
	if err != nil {
		return &UnsupportedError{Pos: pos, Name: name, Reason: "struct has no size"}
	}
	align, err := safecast.Conv[uint64](t.Align())
	if err != nil {
		return &UnsupportedError{Pos: pos, Name: name, Reason: "struct has no alignment"}
	}
	c.records[name] = struct{}{}
	u.Records = append(u.Records, NamedType{Name: name, Type: id, Pos: pos, CSize: size, CAlign: align})
	return nil
}

func (c *converter) function(u *Unit, d *cc.Declarator) error {
	name := d.Name()
	pos := posOf(d)
	ft, ok := d.Type().(*cc.FunctionType)
	if !ok {
		return &UnsupportedError{Pos: pos, Name: name, Reason: "not a function type"}
	}
	for _, f := range u.Funcs {
		if f.Name == name {
			return nil
		}
	}

	ret, err := c.typeOf(ft.Result(), pos, name)
	if err != nil {
		return err
	}
	params := ft.Parameters()
	if len(params) == 1 && params[0].Type().Kind() == cc.Void {
		// f(void)
		params = nil
	}
	fn := sysv.FunctionType{Return: ret, Params: make([]types.TypeID, 0, len(params)), Variadic: ft.IsVariadic()}
	for i, p := range params {
		pt := p.Type()
		// Array and function parameters decay to pointers.
		if k := pt.Kind(); k == cc.Array || k == cc.Function {
			fn.Params = append(fn.Params, c.b.Pointer)
			continue
		}
		id, err := c.typeOf(pt, pos, fmt.Sprintf("%s parameter %d", name, i))
		if err != nil {
			return err
		}
		fn.Params = append(fn.Params, id)
	}
	u.Funcs = append(u.Funcs, NamedFunc{Name: name, Fn: fn, Pos: pos})
	return nil
}

// fixedWidth maps <stdint.h> typedef names onto the fixed-width integer
// kinds, which the classifier tells apart from the C spellings.
var fixedWidth = map[string]types.IntKind{
	"int8_t":    types.IntInt8,
	"uint8_t":   types.IntInt8,
	"int16_t":   types.IntInt16,
	"uint16_t":  types.IntInt16,
	"int32_t":   types.IntInt32,
	"uint32_t":  types.IntInt32,
	"int64_t":   types.IntInt64,
	"uint64_t":  types.IntInt64,
	"size_t":    types.IntSizeT,
	"ptrdiff_t": types.IntPtrDiffT,
}

func (c *converter) typeOf(t cc.Type, pos Pos, name string) (types.TypeID, error) {
	if td := t.Typedef(); td != nil {
		if kind, ok := fixedWidth[td.Name()]; ok {
			return c.types.Intern(types.MakeInt(kind)), nil
		}
	}

	switch t.Kind() {
	case cc.Void:
		return c.b.Void, nil
	case cc.Bool:
		return c.b.Bool, nil
	case cc.Char, cc.SChar, cc.UChar:
		return c.b.Char, nil
	case cc.Short, cc.UShort:
		return c.b.Short, nil
	case cc.Int, cc.UInt:
		return c.b.Int, nil
	case cc.Long, cc.ULong:
		return c.b.Long, nil
	case cc.LongLong, cc.ULongLong:
		return c.b.LongLong, nil
	case cc.Int128, cc.UInt128:
		return c.b.Int128, nil
	case cc.Enum:
		return c.enumType(t, pos, name)
	case cc.Float:
		return c.b.Float, nil
	case cc.Double:
		return c.b.Double, nil
	case cc.LongDouble:
		return c.b.LongDouble, nil
	case cc.Float128:
		return c.b.Float128, nil
	case cc.ComplexFloat:
		return c.b.ComplexFloat, nil
	case cc.ComplexDouble:
		return c.b.ComplexDouble, nil
	case cc.ComplexLongDouble:
		return c.b.ComplexLongDouble, nil
	case cc.Ptr, cc.Function:
		return c.b.Pointer, nil
	case cc.Array:
		return c.arrayType(t, pos, name)
	case cc.Struct:
		st, ok := t.(*cc.StructType)
		if !ok {
			return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: fmt.Sprintf("unexpected struct type %T", t)}
		}
		return c.structType(st, pos, name)
	case cc.Union:
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: "unions are not supported"}
	default:
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: fmt.Sprintf("unsupported type %s", t)}
	}
}

// enumType picks the integer kind of the enum's storage size.
func (c *converter) enumType(t cc.Type, pos Pos, name string) (types.TypeID, error) {
	switch t.Size() {
	case 1:
		return c.b.Char, nil
	case 2:
		return c.b.Short, nil
	case 4:
		return c.b.Int, nil
	case 8:
		return c.b.Long, nil
	default:
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: fmt.Sprintf("enum of %d bytes", t.Size())}
	}
}

func (c *converter) arrayType(t cc.Type, pos Pos, name string) (types.TypeID, error) {
	at, ok := t.(*cc.ArrayType)
	if !ok {
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: fmt.Sprintf("unexpected array type %T", t)}
	}
	n, err := safecast.Conv[uint64](at.Len())
	if err != nil {
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: "arrays without a constant length are not supported"}
	}
	elem, err := c.typeOf(at.Elem(), pos, name)
	if err != nil {
		return types.NoTypeID, err
	}
	return c.types.Array(elem, n), nil
}

func (c *converter) structType(st *cc.StructType, pos Pos, name string) (types.TypeID, error) {
	if id, ok := c.structs[st]; ok {
		return id, nil
	}
	if st.IsIncomplete() {
		return types.NoTypeID, &UnsupportedError{Pos: pos, Name: name, Reason: "incomplete struct"}
	}

	members := make([]types.Member, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		f := st.FieldByIndex(i)
		field := fmt.Sprintf("%s.%s", name, f.Name())
		if f.IsBitfield() {
			return types.NoTypeID, &UnsupportedError{Pos: pos, Name: field, Reason: "bit-fields are not supported"}
		}
		if at, ok := f.Type().(*cc.ArrayType); ok && at.Len() < 0 {
			return types.NoTypeID, &UnsupportedError{Pos: pos, Name: field, Reason: "flexible array members are not supported"}
		}
		id, err := c.typeOf(f.Type(), pos, field)
		if err != nil {
			return types.NoTypeID, err
		}
		off, err := safecast.Conv[uint64](f.Offset())
		if err != nil {
			return types.NoTypeID, &UnsupportedError{Pos: pos, Name: field, Reason: "negative field offset"}
		}
		if off == 0 {
			members = append(members, types.Field(id))
		} else {
			members = append(members, types.FieldAt(id, off))
		}
	}

	id := c.types.Struct(members...)
	c.structs[st] = id
	return id, nil
}
