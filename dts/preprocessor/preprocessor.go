// Package preprocessor holds the minimal macro-table contract the parser
// consumes. It is not a C preprocessor: include resolution and conditional
// evaluation belong to the host. It knows just enough to keep a registry of
// definitions and to read them off "#define" lines.
package preprocessor

import (
	"strings"

	"github.com/kylebonnici/dts-lsp-sub002/dts/parser"
)

// Table is a macro registry keyed by name. It implements
// parser.MacroResolver.
type Table struct {
	macros map[string]parser.Macro
}

func NewTable() *Table {
	return &Table{macros: make(map[string]parser.Macro)}
}

func (t *Table) Define(m parser.Macro) {
	t.macros[m.Name] = m
}

func (t *Table) Undefine(name string) {
	delete(t.macros, name)
}

func (t *Table) LookupMacro(name string) (parser.Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

func (t *Table) Len() int {
	return len(t.macros)
}

// Names returns the defined macro names in no particular order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	return names
}

// ParseDefine reads a single "#define NAME body" or
// "#define NAME(a, b) body" line into a macro definition. Returns false
// for anything that is not a well-formed define.
func ParseDefine(line string) (parser.Macro, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#define")
	if !ok || rest == "" || !isSpace(rest[0]) {
		return parser.Macro{}, false
	}
	rest = strings.TrimLeft(rest, " \t")

	i := 0
	for i < len(rest) && isIdentChar(rest[i]) {
		i++
	}
	if i == 0 {
		return parser.Macro{}, false
	}
	m := parser.Macro{Name: rest[:i]}
	rest = rest[i:]

	// A '(' glued to the name makes the macro function-like; after a space
	// it is part of the body.
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return parser.Macro{}, false
		}
		m.FunctionLike = true
		for _, param := range strings.Split(rest[1:end], ",") {
			param = strings.TrimSpace(param)
			if param != "" {
				m.Params = append(m.Params, param)
			}
		}
		rest = rest[end+1:]
	}

	m.Body = strings.TrimSpace(rest)
	return m, true
}

// ParseDefines collects every define in a source text, most recent
// definition winning, into a fresh table.
func ParseDefines(src string) *Table {
	table := NewTable()
	for _, line := range strings.Split(src, "\n") {
		if m, ok := ParseDefine(line); ok {
			table.Define(m)
		}
	}
	return table
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isIdentChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' || ch == '_'
}
