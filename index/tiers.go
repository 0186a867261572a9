// Package index owns the process-wide symbol state: three precedence-ordered
// tiers plus the incremental replace-by-source reloader that keeps them
// current without workspace rescans.
package index

import (
	"github.com/lexcodex/sslsense/analysis"
)

// TierSet holds the three symbol tiers.
//
//   - self: symbols of the file being edited, keyed by relative path
//   - dynamic: workspace-wide header symbols, keyed by language id
//   - static: external header symbols loaded once at startup, keyed by
//     language id
//
// Lookup precedence is fixed at self > static > dynamic so file-local
// declarations shadow everything and curated external definitions shadow the
// workspace scan. TierSet itself is not synchronized; the owning server
// serializes access within its request turn.
type TierSet struct {
	self    map[string][]analysis.Symbol
	dynamic map[string][]analysis.Symbol
	static  map[string][]analysis.Symbol
}

// NewTierSet returns an empty index.
func NewTierSet() *TierSet {
	return &TierSet{
		self:    make(map[string][]analysis.Symbol),
		dynamic: make(map[string][]analysis.Symbol),
		static:  make(map[string][]analysis.Symbol),
	}
}

// SetSelf replaces the self bucket for a file path.
func (t *TierSet) SetSelf(path string, symbols []analysis.Symbol) {
	t.self[path] = symbols
}

// SetDynamic replaces the workspace bucket for a language.
func (t *TierSet) SetDynamic(langID string, symbols []analysis.Symbol) {
	t.dynamic[langID] = symbols
}

// SetStatic replaces the external bucket for a language.
func (t *TierSet) SetStatic(langID string, symbols []analysis.Symbol) {
	t.static[langID] = symbols
}

// Self returns the current self bucket for a path. The returned slice is the
// live bucket snapshot handed to Reload; callers must not mutate it.
func (t *TierSet) Self(path string) []analysis.Symbol {
	return t.self[path]
}

// Dynamic returns the current workspace bucket for a language.
func (t *TierSet) Dynamic(langID string) []analysis.Symbol {
	return t.dynamic[langID]
}

// Query resolves name through self[path], static[langID], dynamic[langID] in
// that order and returns the first match. Unknown buckets simply contribute
// nothing; a miss is (zero, false), never an error.
func (t *TierSet) Query(langID, path, name string) (analysis.Symbol, bool) {
	for _, bucket := range [][]analysis.Symbol{t.self[path], t.static[langID], t.dynamic[langID]} {
		for _, sym := range bucket {
			if sym.Name == name {
				return sym, true
			}
		}
	}
	return analysis.Symbol{}, false
}

// ListCompletions concatenates self[path], static[langID], and
// dynamic[langID]. Shadowed names stay in the list; hiding duplicates is a
// display concern for the host, not an index concern.
func (t *TierSet) ListCompletions(langID, path string) []analysis.Symbol {
	self, static, dynamic := t.self[path], t.static[langID], t.dynamic[langID]
	out := make([]analysis.Symbol, 0, len(self)+len(static)+len(dynamic))
	out = append(out, self...)
	out = append(out, static...)
	out = append(out, dynamic...)
	return out
}
