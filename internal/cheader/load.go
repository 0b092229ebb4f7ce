package cheader

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"modernc.org/cc/v4"

	"sysvabi/internal/types"
)

// Options tune the C preprocessor.
type Options struct {
	IncludePaths []string
	Defines      map[string]string
}

// prologue provides the fixed-width typedefs even when the header does not
// include <stdint.h>; the converter recognizes them by name.
const prologue = `typedef signed char int8_t;
typedef short int16_t;
typedef int int32_t;
typedef long int64_t;
typedef unsigned char uint8_t;
typedef unsigned short uint16_t;
typedef unsigned int uint32_t;
typedef unsigned long uint64_t;
`

// Load parses and type-checks the header at path and extracts the structs
// and prototypes declared in that file. Declarations pulled in through
// #include are only visited when a declaration of the file uses them.
func Load(ctx context.Context, opts Options, path string) (*Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cfg, err := cc.NewConfig("linux", "amd64")
	if err != nil {
		return nil, fmt.Errorf("failed to configure C front end: %w", err)
	}
	if len(opts.IncludePaths) > 0 {
		cfg.IncludePaths = append(cfg.IncludePaths, opts.IncludePaths...)
	}

	ast, err := cc.Translate(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: "<prologue>", Value: prologue + defines(opts.Defines)},
		{Name: path, Value: src},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse header %v: %w", path, err)
	}

	conv := newConverter(types.NewInterner())
	unit := &Unit{Path: path, Types: conv.types}
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ed := tu.ExternalDeclaration
		if ed == nil || ed.Position().Filename != path {
			continue
		}
		switch ed.Case {
		case cc.ExternalDeclarationDecl:
			if err := conv.declaration(unit, ed.Declaration); err != nil {
				return nil, err
			}
		case cc.ExternalDeclarationFuncDef:
			if err := conv.function(unit, ed.FunctionDefinition.Declarator); err != nil {
				return nil, err
			}
		}
	}
	sort.SliceStable(unit.Records, func(i, j int) bool {
		return unit.Records[i].Pos.Line < unit.Records[j].Pos.Line
	})
	sort.SliceStable(unit.Funcs, func(i, j int) bool {
		return unit.Funcs[i].Pos.Line < unit.Funcs[j].Pos.Line
	})
	return unit, nil
}

func defines(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "#define %s %s\n", name, m[name])
	}
	return sb.String()
}
