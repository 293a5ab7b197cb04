package parser

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
	base   int // offset of input[0] in the enclosing document
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		line:   1,
		column: 1,
	}
}

// NewLexerAt lexes input as if it started at start. Used by the macro
// injection bridge so tokens spliced into a stream keep positions anchored
// at the macro call site.
func NewLexerAt(input []byte, file string, start Position) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		line:   start.Line,
		column: start.Column,
		base:   start.Offset,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.base + l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
		return l.scanWhitespace(startPos)
	}

	if isLetter(ch) {
		return l.scanLetters(startPos)
	}

	if isDigit(ch) {
		if ch == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') && isHexDigit(l.peekN(2)) {
			return l.scanHex(startPos)
		}
		return l.scanDigits(startPos)
	}

	if ch == '"' {
		return l.scanString(startPos)
	}

	return l.scanPunct(startPos)
}

// Tokenize drains the lexer, dropping whitespace from the parse stream and
// collecting comments into a side list. The returned parse stream is linked.
func (l *Lexer) Tokenize() (tokens, comments []*Token) {
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case TokenEOF:
			Link(tokens)
			return tokens, comments
		case TokenWhitespace:
		case TokenComment, TokenLineComment:
			t := tok
			comments = append(comments, &t)
		default:
			t := tok
			tokens = append(tokens, &t)
		}
	}
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for l.peek() != 0 && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.peek() == 0 {
			break
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) scanLetters(start Position) Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.token(TokenLetters, start)
}

func (l *Lexer) scanDigits(start Position) Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	return l.token(TokenDigits, start)
}

func (l *Lexer) scanHex(start Position) Token {
	l.advanceN(2)
	for isHexDigit(l.peek()) {
		l.advance()
	}
	return l.token(TokenHex, start)
}

func (l *Lexer) scanString(start Position) Token {
	l.advance()
	for {
		ch := l.peek()
		if ch == 0 || ch == '\n' {
			break
		}
		if ch == '\\' && l.peekN(1) != 0 {
			l.advanceN(2)
			continue
		}
		l.advance()
		if ch == '"' {
			break
		}
	}
	return l.token(TokenString, start)
}

var punctKinds = map[byte]TokenKind{
	'/': TokenSlash,
	';': TokenSemicolon,
	',': TokenComma,
	'=': TokenAssign,
	'<': TokenLT,
	'>': TokenGT,
	'[': TokenLBracket,
	']': TokenRBracket,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'(': TokenLParen,
	')': TokenRParen,
	'&': TokenAmp,
	'@': TokenAt,
	':': TokenColon,
	'#': TokenHash,
	'?': TokenQuestion,
	'+': TokenPlus,
	'-': TokenMinus,
	'.': TokenPeriod,
	'*': TokenStar,
	'%': TokenPercent,
	'!': TokenBang,
	'~': TokenTilde,
	'^': TokenCaret,
	'|': TokenPipe,
}

func (l *Lexer) scanPunct(start Position) Token {
	ch := l.advance()
	kind, ok := punctKinds[ch]
	if !ok {
		kind = TokenUnknown
	}
	return l.token(kind, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset-l.base : end.Offset-l.base]),
	}
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}
