package index

import (
	"github.com/lexcodex/sslsense/analysis"
)

// Reload computes the new bucket content after path's text changed: entries
// previously attributed to path are dropped, everything else is kept as-is,
// and freshly extracted symbols are appended. Cost is linear in the bucket,
// and entries sourced from other files are never perturbed. Reloading twice
// with the same text is a no-op beyond the first call.
//
// The caller picks the bucket: a self bucket (already keyed by path) is
// replaced wholesale, a dynamic bucket shares entries from every file of the
// language and only the slice attributable to path is touched.
func Reload(path, newText string, prev []analysis.Symbol) []analysis.Symbol {
	next := make([]analysis.Symbol, 0, len(prev))
	for _, sym := range prev {
		if sym.SourcePath != path {
			next = append(next, sym)
		}
	}
	return append(next, analysis.Extract(newText, path)...)
}
