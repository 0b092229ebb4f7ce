// Package report turns the classification of one header into a
// serializable model and renders it.
package report

import (
	"fmt"

	"sysvabi/internal/backend/llvm"
	"sysvabi/internal/cheader"
	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

// Report covers every record and prototype of one header.
type Report struct {
	Header  string   `json:"header" msgpack:"header"`
	Records []Record `json:"records" msgpack:"records"`
	Funcs   []Func   `json:"functions" msgpack:"functions"`
}

// Class describes how one type crosses a call boundary.
type Class struct {
	Type  string `json:"type" msgpack:"type"`
	Size  uint64 `json:"size" msgpack:"size"`
	Align uint64 `json:"align" msgpack:"align"`
	Low   string `json:"low" msgpack:"low"`
	High  string `json:"high" msgpack:"high"`
	// Canonical is empty when the natural representation is kept.
	Canonical string `json:"canonical,omitempty" msgpack:"canonical,omitempty"`
}

// Memory reports whether the value is passed in memory.
func (c Class) Memory() bool { return c.Low == sysv.Memory.String() }

// Record is a struct declared in the header.
type Record struct {
	Name string `json:"name" msgpack:"name"`
	Pos  string `json:"pos" msgpack:"pos"`
	Class
	// LayoutMismatch is set when the C front end placed the struct
	// differently from the layout engine.
	LayoutMismatch string `json:"layout_mismatch,omitempty" msgpack:"layout_mismatch,omitempty"`
}

// Func is a prototype and its lowered IR signature.
type Func struct {
	Name      string  `json:"name" msgpack:"name"`
	Pos       string  `json:"pos" msgpack:"pos"`
	Signature string  `json:"signature" msgpack:"signature"`
	Natural   string  `json:"natural" msgpack:"natural"`
	Lowered   string  `json:"lowered" msgpack:"lowered"`
	Rewritten bool    `json:"rewritten" msgpack:"rewritten"`
	Return    Class   `json:"return" msgpack:"return"`
	Params    []Class `json:"params" msgpack:"params"`
}

// Build classifies everything in unit with abi. abi must share unit.Types.
func Build(unit *cheader.Unit, abi *sysv.ABI) (*Report, error) {
	r := &Report{
		Header:  unit.Path,
		Records: make([]Record, 0, len(unit.Records)),
		Funcs:   make([]Func, 0, len(unit.Funcs)),
	}
	for _, rec := range unit.Records {
		out := Record{Name: rec.Name, Pos: rec.Pos.String(), Class: classOf(abi, rec.Type)}
		if out.Size != rec.CSize || out.Align != rec.CAlign {
			out.LayoutMismatch = fmt.Sprintf("C front end: size %d align %d", rec.CSize, rec.CAlign)
		}
		r.Records = append(r.Records, out)
	}
	for _, fn := range unit.Funcs {
		natural, err := llvm.NaturalSignature(abi.Layout(), fn.Fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn.Pos, fn.Name, err)
		}
		lowered := abi.RewriteFunctionType(natural, fn.Fn)
		out := Func{
			Name:      fn.Name,
			Pos:       fn.Pos.String(),
			Signature: fn.Fn.String(unit.Types),
			Natural:   natural.LLString(),
			Lowered:   lowered.LLString(),
			Rewritten: lowered != natural,
			Return:    classOf(abi, fn.Fn.Return),
			Params:    make([]Class, len(fn.Fn.Params)),
		}
		for i, p := range fn.Fn.Params {
			out.Params[i] = classOf(abi, p)
		}
		r.Funcs = append(r.Funcs, out)
	}
	return r, nil
}

func classOf(abi *sysv.ABI, id types.TypeID) Class {
	cls := abi.Classify(id)
	c := Class{
		Type:  abi.Types().String(id),
		Size:  abi.TypeSize(id),
		Align: abi.TypeAlign(id),
		Low:   cls.Low.String(),
		High:  cls.High.String(),
	}
	if canon := abi.CanonicalType(id); canon != nil {
		c.Canonical = canon.LLString()
	}
	return c
}
