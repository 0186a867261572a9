package server

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/sslsense/analysis"
	"github.com/lexcodex/sslsense/diagnostics"
)

const diagnosticSource = "sslsense"

func completionItem(sym analysis.Symbol, payload string) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      sym.Name,
		Kind:       completionKind(sym.Kind),
		Detail:     payload,
		InsertText: sym.Name,
	}
	if sym.Doc != nil && sym.Doc.Description != "" {
		item.Documentation = sym.Doc.Description
	}
	return item
}

func completionKind(kind analysis.SymbolKind) protocol.CompletionItemKind {
	if kind == analysis.KindConstant {
		return protocol.CompletionItemKindConstant
	}
	return protocol.CompletionItemKindFunction
}

// signatureFor builds signature help from a documented symbol. Undocumented
// procedures and macros still get a bare signature from their payload line.
func signatureFor(sym analysis.Symbol, payload string) *protocol.SignatureInformation {
	if sym.Kind == analysis.KindConstant {
		return nil
	}
	label := payload
	if i := strings.IndexByte(label, '\n'); i >= 0 {
		label = label[:i]
	}
	sig := &protocol.SignatureInformation{Label: label}
	if sym.Doc == nil {
		return sig
	}
	if sym.Doc.Description != "" {
		sig.Documentation = sym.Doc.Description
	}
	for _, param := range sym.Doc.Params {
		doc := param.Type
		sig.Parameters = append(sig.Parameters, protocol.ParameterInformation{
			Label:         param.Name,
			Documentation: doc,
		})
	}
	return sig
}

func protocolDiagnostic(item diagnostics.Item) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	if item.Severity == diagnostics.SeverityWarning {
		severity = protocol.DiagnosticSeverityWarning
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: clampUint32(item.Line), Character: clampUint32(item.ColStart)},
			End:   protocol.Position{Line: clampUint32(item.Line), Character: clampUint32(item.ColEnd)},
		},
		Severity: severity,
		Source:   diagnosticSource,
		Message:  item.Message,
	}
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
