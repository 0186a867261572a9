// Package analysis performs lightweight lexical scanning of SSL and TP2
// sources: declaration extraction, doc-comment parsing, display formatting,
// and cursor token resolution. It deliberately stops short of a full grammar;
// the output is sized for editor affordances, not program analysis.
package analysis

// SymbolKind classifies an extracted declaration.
type SymbolKind int

const (
	// KindConstant is a single-line #define with an all-caps name.
	KindConstant SymbolKind = iota
	// KindMacro is any other #define, including multi-line continuations.
	KindMacro
	// KindProcedure is a `procedure name ... begin` declaration.
	KindProcedure
)

func (k SymbolKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindMacro:
		return "macro"
	case KindProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// DocParam is one @param entry of a doc block.
type DocParam struct {
	Name string
	Type string
}

// StructuredDoc is a parsed /** ... */ block attached to a declaration.
type StructuredDoc struct {
	Description string
	Params      []DocParam
	Ret         string
}

// Symbol is one declaration found by the extractor. Uniqueness is per
// (bucket, SourcePath); the same name may appear from several files and
// tier-merge order decides which one wins at query time.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Detail     string
	SourcePath string
	Line       int
	Doc        *StructuredDoc
}
