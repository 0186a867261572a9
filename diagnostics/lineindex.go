package diagnostics

// LineIndex records the offset of each line start in a document so column
// arithmetic can approximate end-of-line bounds without rescanning text.
type LineIndex struct {
	starts []int
	length int
}

// NewLineIndex builds the offset table for text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, length: len(text)}
}

// LineCount reports the number of lines in the document.
func (ix *LineIndex) LineCount() int {
	return len(ix.starts)
}

// Start returns the document offset of the zero-based line, clamped to the
// document bounds.
func (ix *LineIndex) Start(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(ix.starts) {
		return ix.length
	}
	return ix.starts[line]
}

// EndColumn returns the end-of-line column for the zero-based line: the
// offset of the next line start minus one, taken relative to the line's own
// start. For the last line it is the remaining document length. A line
// outside the document yields 0.
func (ix *LineIndex) EndColumn(line int) int {
	if line < 0 || line >= len(ix.starts) {
		return 0
	}
	start := ix.starts[line]
	if line+1 < len(ix.starts) {
		return ix.starts[line+1] - 1 - start
	}
	return ix.length - start
}
