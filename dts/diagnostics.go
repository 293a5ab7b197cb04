package dts

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/kylebonnici/dts-lsp-sub002/dts/parser"
)

const diagnosticSource = "devicetree"

// ToProtocolDiagnostics converts parser issues into LSP diagnostic records.
// Token positions are 1-based; the protocol wants 0-based lines and
// columns.
func ToProtocolDiagnostics(issues []parser.Issue) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(issues))
	for _, issue := range issues {
		diagnostics = append(diagnostics, ToProtocolDiagnostic(issue))
	}
	return diagnostics
}

func ToProtocolDiagnostic(issue parser.Issue) protocol.Diagnostic {
	severity := toProtocolSeverity(issue.Severity)
	source := diagnosticSource
	code := issue.Kind.String()
	return protocol.Diagnostic{
		Range:    toProtocolRange(issue.Span()),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  issue.Kind.Message(),
	}
}

func toProtocolSeverity(severity parser.Severity) protocol.DiagnosticSeverity {
	switch severity {
	case parser.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case parser.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	}
	return protocol.DiagnosticSeverityError
}

func toProtocolRange(span parser.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(span.Start),
		End:   toProtocolPosition(span.End),
	}
}

func toProtocolPosition(pos parser.Position) protocol.Position {
	line := pos.Line - 1
	if line < 0 {
		line = 0
	}
	column := pos.Column - 1
	if column < 0 {
		column = 0
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(column),
	}
}
