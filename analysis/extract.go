package analysis

import (
	"regexp"
	"sort"
	"strings"
)

// Declaration scanning is regex driven. Each declaration kind is a scanRule
// so the matching behavior stays unit-testable in isolation; the shared
// runner owns cursor advancement, including the zero-width guard.
type scanRule struct {
	re   *regexp.Regexp
	emit func(text, sourcePath string, m []int) (Symbol, bool)
}

var (
	macroRe     = regexp.MustCompile(`(?m)^[ \t]*#define[ \t]+([A-Za-z_][A-Za-z0-9_]*)(\(([^)\n]*)\))?[ \t]*([^\n]*)`)
	procedureRe = regexp.MustCompile(`(?m)^[ \t]*procedure[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*(\(([^)\n]*)\))?[ \t\n]*begin`)
	constNameRe = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

var declRules = []scanRule{
	{re: macroRe, emit: emitMacro},
	{re: procedureRe, emit: emitProcedure},
}

// Extract scans text for macro and procedure declarations and returns them in
// source order, tagged with sourcePath. Malformed regions are skipped without
// error and no deduplication happens here; replace-by-source semantics live
// in the index layer.
func Extract(text, sourcePath string) []Symbol {
	var symbols []Symbol
	for _, rule := range declRules {
		symbols = append(symbols, runRule(rule, text, sourcePath)...)
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Line < symbols[j].Line
	})
	return symbols
}

func runRule(rule scanRule, text, sourcePath string) []Symbol {
	var out []Symbol
	pos := 0
	for pos < len(text) {
		m := rule.re.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}
		if sym, ok := rule.emit(text, sourcePath, m); ok {
			out = append(out, sym)
		}
		// A zero-width match would otherwise pin the cursor forever.
		next := m[1]
		if next == m[0] {
			next = m[0] + 1
		}
		pos = next
	}
	return out
}

func emitMacro(text, sourcePath string, m []int) (Symbol, bool) {
	name := text[m[2]:m[3]]
	params := ""
	if m[4] >= 0 {
		params = text[m[6]:m[7]]
	}
	value := strings.TrimSpace(text[m[8]:m[9]])
	multiline := strings.HasSuffix(value, `\`)

	sym := Symbol{
		Name:       name,
		Kind:       KindMacro,
		Detail:     name + "(" + params + ")",
		SourcePath: sourcePath,
		Line:       lineOf(text, m[0]),
		Doc:        docBefore(text, m[0]),
	}
	// Single-line all-caps macros read as plain constants and show only
	// their value. Name casing, not semantics, decides this.
	if !multiline && constNameRe.MatchString(name) {
		sym.Kind = KindConstant
		sym.Detail = value
	}
	return sym, true
}

func emitProcedure(text, sourcePath string, m []int) (Symbol, bool) {
	name := text[m[2]:m[3]]
	params := ""
	if m[4] >= 0 {
		params = text[m[6]:m[7]]
	}
	return Symbol{
		Name:       name,
		Kind:       KindProcedure,
		Detail:     "procedure " + name + "(" + params + ")",
		SourcePath: sourcePath,
		Line:       lineOf(text, m[0]),
		Doc:        docBefore(text, m[0]),
	}, true
}

func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n")
}
