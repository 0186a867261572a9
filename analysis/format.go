package analysis

import (
	"fmt"
	"strings"
)

// Format renders the display string for a symbol. The result feeds cached
// hover and completion payloads, so the function is pure: the same symbol
// always formats to the same string.
//
// Documented symbols get a synthetic type-annotated signature built from the
// doc block; undocumented ones fall back to the literal source snippet (the
// constant value or the raw parameter list).
func Format(sym Symbol) string {
	if sym.Doc == nil {
		return sym.Detail
	}
	ret := sym.Doc.Ret
	if ret == "" {
		ret = "void"
	}
	params := make([]string, 0, len(sym.Doc.Params))
	for _, p := range sym.Doc.Params {
		if p.Type == "" {
			params = append(params, p.Name)
			continue
		}
		params = append(params, p.Type+" "+p.Name)
	}
	sig := fmt.Sprintf("%s %s(%s)", ret, sym.Name, strings.Join(params, ", "))
	if desc := strings.TrimSpace(sym.Doc.Description); desc != "" {
		return sig + "\n" + desc
	}
	return sig
}
