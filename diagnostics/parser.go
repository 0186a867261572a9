// Package diagnostics turns free-form compiler stdout into structured,
// range-accurate diagnostics. The external compilers are black boxes; the
// only contract is the shape of their error and warning lines.
package diagnostics

import (
	"log"
	"regexp"
	"strconv"
	"strings"
)

// Severity of a parsed diagnostic line.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Item is one parsed diagnostic. Line and columns are zero-based, ready for
// a range-based consumer. Items are transient: each Parse call produces a
// fresh batch that supersedes the previous one for the same file.
type Item struct {
	File     string
	Line     int
	ColStart int
	ColEnd   int
	Message  string
	Severity Severity
}

// Result groups one parse batch.
type Result struct {
	Errors   []Item
	Warnings []Item
}

// Compiler lines look like:
//
//	[Error] <Semantic> dude.ssl:26:12: unknown variable
//	[Warning] <Parser> dude.ssl:4:: procedure never called
//
// The bracketed category is discarded. The column segment may be empty.
var (
	errorLineRe   = regexp.MustCompile(`\[Error\]\s+<([^>]*)>\s+(\S+?):(\d+):(\d*):\s?(.*)`)
	warningLineRe = regexp.MustCompile(`\[Warning\]\s+<([^>]*)>\s+(\S+?):(\d+):(\d*):\s?(.*)`)
)

// Parser scans compiler output. The optional logger records skipped
// malformed lines; a malformed line never aborts the batch.
type Parser struct {
	logger *log.Logger
}

// NewParser builds a Parser. A nil logger falls back to log.Default.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts every error and warning from output. ix is the line-offset
// table of the document the diagnostics refer to; warnings without an
// explicit column use it to stretch their range to end of line.
func (p *Parser) Parse(output string, ix *LineIndex) Result {
	if ix == nil {
		ix = NewLineIndex("")
	}
	var res Result
	for _, m := range errorLineRe.FindAllStringSubmatch(output, -1) {
		item, err := p.buildError(m)
		if err != nil {
			p.logger.Printf("diagnostics: skipping malformed error line %q: %v", m[0], err)
			continue
		}
		res.Errors = append(res.Errors, item)
	}
	for _, m := range warningLineRe.FindAllStringSubmatch(output, -1) {
		item, err := p.buildWarning(m, ix)
		if err != nil {
			p.logger.Printf("diagnostics: skipping malformed warning line %q: %v", m[0], err)
			continue
		}
		res.Warnings = append(res.Warnings, item)
	}
	return res
}

// buildError converts a matched error line. Errors anchor at the start of
// the line and end at the reported column, a point-like underline. A missing
// column defaults to 1, so the emitted range collapses to column zero.
func (p *Parser) buildError(m []string) (Item, error) {
	line, err := strconv.Atoi(m[3])
	if err != nil {
		return Item{}, err
	}
	col := 1
	if m[4] != "" {
		if col, err = strconv.Atoi(m[4]); err != nil {
			return Item{}, err
		}
	}
	return Item{
		File:     m[2],
		Line:     line - 1,
		ColStart: 0,
		ColEnd:   col - 1,
		Message:  strings.TrimSpace(m[5]),
		Severity: SeverityError,
	}, nil
}

// buildWarning converts a matched warning line. The start column is the
// parsed value (0 when missing); the end column is the offset of the next
// line start minus one, i.e. the range runs to end of line.
func (p *Parser) buildWarning(m []string, ix *LineIndex) (Item, error) {
	line, err := strconv.Atoi(m[3])
	if err != nil {
		return Item{}, err
	}
	col := 0
	if m[4] != "" {
		if col, err = strconv.Atoi(m[4]); err != nil {
			return Item{}, err
		}
	}
	return Item{
		File:     m[2],
		Line:     line - 1,
		ColStart: col,
		ColEnd:   ix.EndColumn(line - 1),
		Message:  strings.TrimSpace(m[5]),
		Severity: SeverityWarning,
	}, nil
}
