package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"sysvabi/internal/cheader"
	"sysvabi/internal/sysv"
	"sysvabi/internal/types"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	in := types.NewInterner()
	b := in.Builtins()
	vec := in.Struct(types.Field(b.Float), types.Field(b.Float))
	big := in.Struct(types.Field(in.Array(b.Int64, 5)))
	unit := &cheader.Unit{
		Path:  "vec.h",
		Types: in,
		Records: []cheader.NamedType{
			{Name: "vec2", Type: vec, Pos: cheader.Pos{File: "vec.h", Line: 1, Col: 1}, CSize: 8, CAlign: 4},
			{Name: "struct big", Type: big, Pos: cheader.Pos{File: "vec.h", Line: 2, Col: 1}, CSize: 40, CAlign: 8},
		},
		Funcs: []cheader.NamedFunc{
			{Name: "scale", Fn: sysv.FunctionType{Return: vec, Params: []types.TypeID{vec, b.Float}}, Pos: cheader.Pos{File: "vec.h", Line: 3, Col: 6}},
			{Name: "add", Fn: sysv.FunctionType{Return: b.Int, Params: []types.TypeID{b.Int, b.Int}}, Pos: cheader.Pos{File: "vec.h", Line: 4, Col: 5}},
		},
	}
	r, err := Build(unit, sysv.New(in))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func TestBuild(t *testing.T) {
	r := sampleReport(t)
	vec := r.Records[0]
	if vec.Low != "SSE" || vec.High != "NO_CLASS" || vec.Canonical != "<2 x float>" {
		t.Fatalf("unexpected vec2 class %+v", vec.Class)
	}
	if vec.LayoutMismatch != "" {
		t.Fatalf("unexpected layout mismatch %q", vec.LayoutMismatch)
	}
	big := r.Records[1]
	if !big.Memory() || big.Canonical != "" {
		t.Fatalf("struct big must be MEMORY without canonical type, got %+v", big.Class)
	}
	if big.LayoutMismatch == "" {
		t.Fatalf("array alignment differs from the C front end and must be reported")
	}

	scale := r.Funcs[0]
	if !scale.Rewritten || scale.Lowered == scale.Natural {
		t.Fatalf("scale should be rewritten: %+v", scale)
	}
	if !strings.HasPrefix(scale.Lowered, "<2 x float>") {
		t.Fatalf("unexpected lowered signature %s", scale.Lowered)
	}
	if r.Funcs[1].Rewritten {
		t.Fatalf("add must not be rewritten")
	}
}

func TestWritePretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatPretty, []*Report{sampleReport(t)}, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"vec.h\n", "records\n", "vec2", "{SSE, NO_CLASS}", "<2 x float>", "{MEMORY, MEMORY}", "lowered: unchanged", "note: struct big"} {
		if !strings.Contains(out, want) {
			t.Fatalf("pretty output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("uncolored output contains escapes:\n%s", out)
	}
}

func TestWriteJSONAndMsgpack(t *testing.T) {
	reports := []*Report{sampleReport(t)}

	var js bytes.Buffer
	if err := Write(&js, FormatJSON, reports, Options{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var fromJSON []Report
	if err := json.Unmarshal(js.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(fromJSON) != 1 || fromJSON[0].Records[0].Canonical != "<2 x float>" {
		t.Fatalf("unexpected json document %s", js.String())
	}

	var mp bytes.Buffer
	if err := Write(&mp, FormatMsgpack, reports, Options{}); err != nil {
		t.Fatalf("msgpack: %v", err)
	}
	var fromMsgpack []Report
	if err := msgpack.Unmarshal(mp.Bytes(), &fromMsgpack); err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if fromMsgpack[0].Funcs[0].Lowered != reports[0].Funcs[0].Lowered {
		t.Fatalf("msgpack lost the lowered signature")
	}
}

func TestTableAlignsColoredCells(t *testing.T) {
	p := newPalette(true)
	var sb strings.Builder
	writeTable(&sb, [][]string{
		{"a", p.class("INTEGER"), "x"},
		{"bb", p.class("SSE"), "y"},
	})
	lines := strings.Split(strings.TrimRight(stripANSI(sb.String()), "\n"), "\n")
	if len(lines) != 2 || strings.Index(lines[0], "x") != strings.Index(lines[1], "y") {
		t.Fatalf("columns not aligned:\n%s", strings.Join(lines, "\n"))
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" JSON "); err != nil || f != FormatJSON {
		t.Fatalf("want json, got %q (%v)", f, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error for yaml")
	}
}
