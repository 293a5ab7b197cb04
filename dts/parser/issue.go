package parser

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	}
	return "unknown"
}

// IssueKind is the closed enumeration of syntax issues the grammar rules
// can report. Each rule reports a specific kind at a specific token range
// and keeps parsing, so every input produces a complete best-effort tree.
type IssueKind int

const (
	// Structural
	IssueEndStatement IssueKind = iota
	IssueCurlyOpen
	IssueCurlyClose
	IssueCloseBracket

	// Lexical shape
	IssueUnknownToken
	IssueDeleteIncomplete
	IssueNodeNameStart

	// Values
	IssueMissingValue
	IssueByteStringEven
	IssueByteStringHex
	IssueMissingComma

	// Whitespace
	IssueWhitespaceNotAllowed
	IssueAddressWhitespace

	// Addresses
	IssueAddressHexPrefix
	IssueAddressULLSuffix

	// References
	IssueMissingLabelName
	IssueMissingNodeName
	IssueMissingForwardSlash
	IssueMissingPath

	// Labels
	IssueLabelMissingColon

	// Deletions
	IssueMissingTarget
	IssueWrongTargetKind
)

var issueKindNames = map[IssueKind]string{
	IssueEndStatement:         "end-statement",
	IssueCurlyOpen:            "curly-open",
	IssueCurlyClose:           "curly-close",
	IssueCloseBracket:         "close-bracket",
	IssueUnknownToken:         "unknown-token",
	IssueDeleteIncomplete:     "delete-incomplete",
	IssueNodeNameStart:        "node-name-start",
	IssueMissingValue:         "missing-value",
	IssueByteStringEven:       "bytestring-even",
	IssueByteStringHex:        "bytestring-hex",
	IssueMissingComma:         "missing-comma",
	IssueWhitespaceNotAllowed: "whitespace-not-allowed",
	IssueAddressWhitespace:    "address-whitespace",
	IssueAddressHexPrefix:     "address-hex-prefix",
	IssueAddressULLSuffix:     "address-ull-suffix",
	IssueMissingLabelName:     "missing-label-name",
	IssueMissingNodeName:      "missing-node-name",
	IssueMissingForwardSlash:  "missing-forward-slash",
	IssueMissingPath:          "missing-path",
	IssueLabelMissingColon:    "label-missing-colon",
	IssueMissingTarget:        "missing-target",
	IssueWrongTargetKind:      "wrong-target-kind",
}

func (k IssueKind) String() string {
	if name, ok := issueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

var issueMessages = map[IssueKind]string{
	IssueEndStatement:         "expected ';'",
	IssueCurlyOpen:            "expected '{'",
	IssueCurlyClose:           "expected '}'",
	IssueCloseBracket:         "expected closing bracket",
	IssueUnknownToken:         "unrecognized token",
	IssueDeleteIncomplete:     "incomplete delete keyword",
	IssueNodeNameStart:        "node name must start with a letter",
	IssueMissingValue:         "missing value",
	IssueByteStringEven:       "byte string value has odd number of hex digits",
	IssueByteStringHex:        "byte string value must be hex digits",
	IssueMissingComma:         "expected ','",
	IssueWhitespaceNotAllowed: "whitespace not allowed here",
	IssueAddressWhitespace:    "whitespace not allowed in unit address",
	IssueAddressHexPrefix:     "unit address should not have a 0x prefix",
	IssueAddressULLSuffix:     "unit address should not have a ULL suffix",
	IssueMissingLabelName:     "expected label name after '&'",
	IssueMissingNodeName:      "expected node name",
	IssueMissingForwardSlash:  "expected '/'",
	IssueMissingPath:          "expected node path",
	IssueLabelMissingColon:    "label should end with ':'",
	IssueMissingTarget:        "expected delete target",
	IssueWrongTargetKind:      "delete target has the wrong form",
}

// Message returns the human-readable text for the issue kind.
func (k IssueKind) Message() string {
	if msg, ok := issueMessages[k]; ok {
		return msg
	}
	return "syntax error"
}

// Issue is one diagnostic: what went wrong, how severe it is, the token
// range it is anchored to, and the best-effort node it belongs to.
type Issue struct {
	Kind     IssueKind
	Severity Severity
	First    *Token
	Last     *Token
	Node     *Node
}

// Span returns the source range the issue is anchored to.
func (i Issue) Span() Span {
	var s Span
	if i.First != nil {
		s.Start = i.First.Span.Start
	}
	if i.Last != nil {
		s.End = i.Last.Span.End
	}
	return s
}
