package parser

import "strconv"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Runs
	TokenLetters
	TokenDigits
	TokenHex
	TokenString

	// Punctuation
	TokenSlash
	TokenSemicolon
	TokenComma
	TokenAssign
	TokenLT
	TokenGT
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenAmp
	TokenAt
	TokenColon
	TokenHash
	TokenQuestion
	TokenPlus
	TokenMinus
	TokenPeriod
	TokenStar
	TokenPercent
	TokenBang
	TokenTilde
	TokenCaret
	TokenPipe
	TokenUnknown
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:         "EOF",
	TokenWhitespace:  "Whitespace",
	TokenComment:     "Comment",
	TokenLineComment: "LineComment",
	TokenLetters:     "Letters",
	TokenDigits:      "Digits",
	TokenHex:         "Hex",
	TokenString:      "String",
	TokenSlash:       "/",
	TokenSemicolon:   ";",
	TokenComma:       ",",
	TokenAssign:      "=",
	TokenLT:          "<",
	TokenGT:          ">",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenAmp:         "&",
	TokenAt:          "@",
	TokenColon:       ":",
	TokenHash:        "#",
	TokenQuestion:    "?",
	TokenPlus:        "+",
	TokenMinus:       "-",
	TokenPeriod:      ".",
	TokenStar:        "*",
	TokenPercent:     "%",
	TokenBang:        "!",
	TokenTilde:       "~",
	TokenCaret:       "^",
	TokenPipe:        "|",
	TokenUnknown:     "Unknown",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is an immutable lexical fragment. The lexer splits input
// aggressively (single punctuation characters, letter runs, digit runs) so
// the grammar can enforce adjacency between fragments; node and property
// names are glued back together from adjacent fragments during parsing.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string

	// Stream neighbors, fixed up by Link and by macro splices.
	Prev *Token
	Next *Token
}

// Adjacent reports whether next starts exactly where t ends, with no
// intervening whitespace or comment.
func (t *Token) Adjacent(next *Token) bool {
	if t == nil || next == nil {
		return false
	}
	return t.Span.End.Offset == next.Span.Start.Offset
}

// SameLine reports whether other starts on the line t ends on.
func (t *Token) SameLine(other *Token) bool {
	if t == nil || other == nil {
		return false
	}
	return t.Span.End.Line == other.Span.Start.Line
}

// Link rebuilds the Prev/Next chain over tokens. It is called once after
// lexing and again after every macro splice.
func Link(tokens []*Token) {
	var prev *Token
	for _, tok := range tokens {
		tok.Prev = prev
		tok.Next = nil
		if prev != nil {
			prev.Next = tok
		}
		prev = tok
	}
}
