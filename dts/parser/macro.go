package parser

import "strings"

// Macro is the parser's view of one preprocessor definition. Function-like
// macros carry parameter names; object-like macros have nil Params.
type Macro struct {
	Name         string
	Params       []string
	Body         string
	FunctionLike bool
}

// MacroResolver is the contract the collaborating preprocessor exposes to
// the parser: a lookup over the macro table, nothing more.
type MacroResolver interface {
	LookupMacro(name string) (Macro, bool)
}

// tryInjectMacro is the injection bridge. When the cursor sits on an
// identifier (or a call shape) the registry knows, the replacement text is
// re-lexed and spliced into the live token stream at the identifier's
// position, and the cursor is rewound so the current production re-attempts
// against the new tokens. Returns true when the stream was rewritten.
func (p *Parser) tryInjectMacro() bool {
	if p.macros == nil {
		return false
	}
	tok := p.peek()
	if tok == nil || tok.Kind != TokenLetters {
		return false
	}
	macro, ok := p.macros.LookupMacro(tok.Literal)
	if !ok {
		return false
	}
	if p.paintedWith(tok, macro.Name) {
		return false
	}
	start := p.cursor.pos

	count := 1
	body := macro.Body
	if macro.FunctionLike {
		args, consumed, ok := p.collectCallArgs(start)
		if !ok {
			return false
		}
		count += consumed
		body = substituteParams(macro.Params, args, body)
	}

	last := p.cursor.tokens[start+count-1]
	repl, _ := NewLexerAt([]byte(body), p.file, tok.Span.Start).Tokenize()

	// An expansion containing its own name is non-expandable; skipping it
	// is what guarantees termination.
	for _, r := range repl {
		if r.Kind == TokenLetters && r.Literal == macro.Name {
			return false
		}
	}

	p.paintReplacement(repl, tok, macro.Name)
	p.dropCommentsIn(Span{Start: tok.Span.Start, End: last.Span.End})
	p.cursor.splice(start, count, repl)
	p.cursor.pos = start
	return true
}

// paintedWith reports whether tok descends from an expansion of name.
func (p *Parser) paintedWith(tok *Token, name string) bool {
	return p.painted[tok] != nil && p.painted[tok][name]
}

// paintReplacement marks every replacement token with the expanded macro's
// name plus whatever paint the call site already carried, so a name is
// never expanded again inside its own replacement, directly or through a
// chain of other macros. Keying on token identity keeps the guard immune
// to offset drift from whitespace in macro bodies.
func (p *Parser) paintReplacement(repl []*Token, call *Token, name string) {
	if p.painted == nil {
		p.painted = make(map[*Token]map[string]bool)
	}
	inherited := p.painted[call]
	for _, r := range repl {
		paint := make(map[string]bool, len(inherited)+1)
		for n := range inherited {
			paint[n] = true
		}
		paint[name] = true
		p.painted[r] = paint
	}
}

// collectCallArgs scans the call shape starting just past the identifier at
// start, splitting the top-level comma-separated argument tokens into raw
// text. Returns ok=false when there is no terminated call to consume.
func (p *Parser) collectCallArgs(start int) (args []string, consumed int, ok bool) {
	tokens := p.cursor.tokens
	if start+1 >= len(tokens) || tokens[start+1].Kind != TokenLParen {
		return nil, 0, false
	}
	depth := 0
	var sb strings.Builder
	var prev *Token
	for i := start + 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case TokenLParen:
			depth++
			if depth == 1 {
				prev = tok
				continue
			}
		case TokenRParen:
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(sb.String()))
				return args, i - start, true
			}
		case TokenComma:
			if depth == 1 {
				args = append(args, strings.TrimSpace(sb.String()))
				sb.Reset()
				prev = tok
				continue
			}
		}
		if prev != nil && !prev.Adjacent(tok) {
			sb.WriteString(" ")
		}
		sb.WriteString(tok.Literal)
		prev = tok
	}
	return nil, 0, false
}

// substituteParams performs the textual parameter substitution for a
// function-like expansion: identifier tokens in the body matching a
// parameter name are replaced with the corresponding argument text.
func substituteParams(params, args []string, body string) string {
	byName := make(map[string]string, len(params))
	for i, param := range params {
		if i < len(args) {
			byName[param] = args[i]
		} else {
			byName[param] = ""
		}
	}
	lx := NewLexer([]byte(body), "")
	var sb strings.Builder
	for {
		tok := lx.NextToken()
		if tok.Kind == TokenEOF {
			return sb.String()
		}
		if tok.Kind == TokenLetters {
			if arg, ok := byName[tok.Literal]; ok {
				sb.WriteString(arg)
				continue
			}
		}
		sb.WriteString(tok.Literal)
	}
}

// dropCommentsIn removes comments lexically inside a replaced span; their
// original positions are no longer valid once the splice lands.
func (p *Parser) dropCommentsIn(span Span) {
	kept := p.comments[:0]
	for _, c := range p.comments {
		if span.Contains(c.Span) {
			continue
		}
		kept = append(kept, c)
	}
	p.comments = kept
}
