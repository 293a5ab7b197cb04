package parser

import (
	"strconv"
	"strings"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithMacros supplies the preprocessor macro registry consulted by the
// injection bridge. Without it, unresolved identifiers stay MacroExpr nodes.
func WithMacros(resolver MacroResolver) Option {
	return func(p *Parser) {
		p.macros = resolver
	}
}

// WithComments supplies the comment tokens the lexer set aside, so the
// post-parse pass can attach them to nodes and the macro bridge can drop
// the ones inside replaced spans.
func WithComments(comments []*Token) Option {
	return func(p *Parser) {
		p.comments = comments
	}
}

type Parser struct {
	file     string
	cursor   cursor
	comments []*Token
	macros   MacroResolver
	issues   []Issue
	doc      *Node
	painted  map[*Token]map[string]bool
}

// ParseDocument parses a token stream to exhaustion and returns the parser
// holding the finished tree and diagnostics. The tree is best-effort: any
// input, valid or not, yields a complete document node.
func ParseDocument(tokens []*Token, opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	p.cursor = cursor{tokens: tokens}
	p.parseDocument()
	if p.cursor.depth() != 0 {
		panic("parser: checkpoint stack not balanced at end of parse")
	}
	p.attachComments()
	return p
}

// ParseSource lexes and parses source text in one step.
func ParseSource(src []byte, file string, opts ...Option) *Parser {
	tokens, comments := NewLexer(src, file).Tokenize()
	opts = append([]Option{WithFile(file), WithComments(comments)}, opts...)
	return ParseDocument(tokens, opts...)
}

// Document returns the root document node.
func (p *Parser) Document() *Node {
	return p.doc
}

// AllAstItems returns the flattened list of top-level AST items: directives,
// includes, root nodes, deletions, and any unhandled constructs kept for
// error reporting.
func (p *Parser) AllAstItems() []*Node {
	return p.doc.Children
}

func (p *Parser) Issues() []Issue {
	return p.issues
}

func (p *Parser) Comments() []*Token {
	return p.comments
}

// Tokens returns the token stream as it stands after parsing, including any
// macro expansions spliced in along the way.
func (p *Parser) Tokens() []*Token {
	return p.cursor.tokens
}

func (p *Parser) peek() *Token {
	return p.cursor.peek()
}

func (p *Parser) advance() *Token {
	return p.cursor.advance()
}

func (p *Parser) check(kind TokenKind) bool {
	tok := p.cursor.peek()
	return tok != nil && tok.Kind == kind
}

func (p *Parser) expect(kind TokenKind) *Token {
	if p.check(kind) {
		return p.advance()
	}
	return nil
}

func (p *Parser) report(kind IssueKind, severity Severity, node *Node, first, last *Token) {
	if first == nil {
		first = p.cursor.prev()
	}
	if last == nil {
		last = first
	}
	p.issues = append(p.issues, Issue{
		Kind:     kind,
		Severity: severity,
		First:    first,
		Last:     last,
		Node:     node,
	})
}

func (p *Parser) reportAt(kind IssueKind, severity Severity, node *Node, tok *Token) {
	p.report(kind, severity, node, tok, tok)
}

// glueRun consumes a maximal run of adjacent fragment tokens accepted by
// accept, returning the glued text and its token bounds. Fragments
// separated by whitespace never glue.
func (p *Parser) glueRun(accept func(TokenKind) bool) (string, *Token, *Token) {
	tok := p.peek()
	if tok == nil || !accept(tok.Kind) {
		return "", nil, nil
	}
	first := p.advance()
	last := first
	var sb strings.Builder
	sb.WriteString(first.Literal)
	for {
		next := p.peek()
		if next == nil || !accept(next.Kind) || !last.Adjacent(next) {
			break
		}
		last = p.advance()
		sb.WriteString(last.Literal)
	}
	return sb.String(), first, last
}

func isNodeNameFragment(kind TokenKind) bool {
	switch kind {
	case TokenLetters, TokenDigits, TokenComma, TokenPeriod, TokenPlus, TokenMinus:
		return true
	}
	return false
}

func isPropertyNameFragment(kind TokenKind) bool {
	return isNodeNameFragment(kind) || kind == TokenQuestion || kind == TokenHash
}

func isKeywordFragment(kind TokenKind) bool {
	switch kind {
	case TokenLetters, TokenDigits, TokenMinus:
		return true
	}
	return false
}

func isAddressFragment(kind TokenKind) bool {
	switch kind {
	case TokenLetters, TokenDigits, TokenHex:
		return true
	}
	return false
}

// --- Document level -------------------------------------------------------

func (p *Parser) parseDocument() {
	doc := &Node{Kind: KindDocument}
	p.doc = doc
	for !p.cursor.atEnd() {
		if p.parseTopLevel(doc) {
			continue
		}
		tok := p.advance()
		unknown := &Node{Kind: KindUnknownToken, First: tok, Last: tok, Text: tok.Literal}
		doc.AddChild(unknown)
		p.reportAt(IssueUnknownToken, SeverityError, unknown, tok)
		for p.check(TokenSemicolon) {
			p.advance()
		}
	}
}

// parseTopLevel tries each document-level alternative in priority order;
// the first success wins.
func (p *Parser) parseTopLevel(doc *Node) bool {
	if n := p.parseDTSVersion(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parseMemReserve(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parsePlugin(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parseInclude(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parseRootNode(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parseDeleteStatement(targetRef); n != nil {
		doc.AddChild(n)
		return true
	}
	if p.tryInjectMacro() {
		return true
	}
	if n := p.parseChildNode(childRef); n != nil {
		doc.AddChild(n)
		return true
	}
	// Fallbacks for malformed top-level input: these constructs are only
	// valid inside a node, but parsing them keeps the tree and the
	// diagnostics useful.
	if n := p.parseProperty(); n != nil {
		doc.AddChild(n)
		return true
	}
	if n := p.parseChildNode(childName); n != nil {
		doc.AddChild(n)
		return true
	}
	return false
}

// matchSlashKeyword consumes "/word/" where word may span several adjacent
// fragment tokens. The match is exact; anything else rolls back.
func (p *Parser) matchSlashKeyword(word string) (first, last *Token, ok bool) {
	p.cursor.checkpoint()
	slash := p.expect(TokenSlash)
	if slash == nil {
		p.cursor.rollback()
		return nil, nil, false
	}
	next := p.peek()
	if next == nil || !slash.Adjacent(next) {
		p.cursor.rollback()
		return nil, nil, false
	}
	text, _, kwLast := p.glueRun(isKeywordFragment)
	if text != word {
		p.cursor.rollback()
		return nil, nil, false
	}
	closing := p.peek()
	if closing == nil || closing.Kind != TokenSlash || !kwLast.Adjacent(closing) {
		p.cursor.rollback()
		return nil, nil, false
	}
	p.advance()
	p.cursor.commit()
	return slash, closing, true
}

func (p *Parser) parseDTSVersion() *Node {
	first, last, ok := p.matchSlashKeyword("dts-v1")
	if !ok {
		return nil
	}
	node := &Node{Kind: KindDTSVersion, First: first, Last: last}
	p.expectEndStatement(node)
	return node
}

func (p *Parser) parsePlugin() *Node {
	first, last, ok := p.matchSlashKeyword("plugin")
	if !ok {
		return nil
	}
	node := &Node{Kind: KindPlugin, First: first, Last: last}
	p.expectEndStatement(node)
	return node
}

func (p *Parser) parseMemReserve() *Node {
	first, last, ok := p.matchSlashKeyword("memreserve")
	if !ok {
		return nil
	}
	node := &Node{Kind: KindMemReserve, First: first, Last: last}
	for i := 0; i < 2; i++ {
		num := p.parseNumber()
		if num == nil {
			p.reportAt(IssueMissingValue, SeverityError, node, p.peek())
			break
		}
		node.AddChild(num)
	}
	p.expectEndStatement(node)
	return node
}

func (p *Parser) parseInclude() *Node {
	if !p.check(TokenHash) {
		return nil
	}
	p.cursor.checkpoint()
	hash := p.advance()
	kw := p.peek()
	if kw == nil || kw.Kind != TokenLetters || kw.Literal != "include" {
		p.cursor.rollback()
		return nil
	}
	p.advance()
	node := &Node{Kind: KindInclude, First: hash, Last: kw}
	switch {
	case p.check(TokenString):
		str := p.advance()
		node.Text = strings.Trim(str.Literal, "\"")
		node.extend(str)
	case p.check(TokenLT):
		lt := p.advance()
		node.extend(lt)
		var sb strings.Builder
		for {
			tok := p.peek()
			if tok == nil || !lt.SameLine(tok) {
				p.reportAt(IssueCloseBracket, SeverityError, node, p.cursor.prev())
				break
			}
			p.advance()
			node.extend(tok)
			if tok.Kind == TokenGT {
				break
			}
			sb.WriteString(tok.Literal)
		}
		node.Text = sb.String()
	default:
		p.reportAt(IssueMissingPath, SeverityError, node, p.peek())
	}
	p.cursor.commit()
	return node
}

func (p *Parser) parseRootNode() *Node {
	p.cursor.checkpoint()
	slash := p.expect(TokenSlash)
	if slash == nil {
		p.cursor.rollback()
		return nil
	}
	if !p.check(TokenLBrace) {
		p.cursor.rollback()
		return nil
	}
	p.advance()
	node := &Node{Kind: KindRootNode, First: slash}
	p.parseNodeBody(node)
	p.closeNode(node)
	p.cursor.commit()
	return node
}

// parseNodeBody parses the productions between a node's braces: child
// nodes, properties, and deletions, until a closing brace or a stray
// statement terminator. The cursor must be just past '{'.
func (p *Parser) parseNodeBody(node *Node) {
	for {
		if p.cursor.atEnd() || p.check(TokenRBrace) || p.check(TokenSemicolon) {
			return
		}
		if p.parseNodeContent(node) {
			continue
		}
		tok := p.advance()
		unknown := &Node{Kind: KindUnknownToken, First: tok, Last: tok, Text: tok.Literal}
		node.AddChild(unknown)
		p.reportAt(IssueUnknownToken, SeverityError, unknown, tok)
	}
}

func (p *Parser) parseNodeContent(parent *Node) bool {
	if p.tryInjectMacro() {
		return true
	}
	if n := p.parseDeleteStatement(targetName); n != nil {
		parent.AddChild(n)
		return true
	}
	if n := p.parseChildNode(childName); n != nil {
		parent.AddChild(n)
		return true
	}
	if n := p.parseProperty(); n != nil {
		parent.AddChild(n)
		return true
	}
	return false
}

// closeNode consumes the node's closing '}' and ';', reporting a targeted
// diagnostic for each one that is missing.
func (p *Parser) closeNode(node *Node) {
	if rb := p.expect(TokenRBrace); rb != nil {
		node.extend(rb)
	} else {
		p.reportAt(IssueCurlyClose, SeverityError, node, p.cursor.prev())
	}
	p.expectEndStatement(node)
}

func (p *Parser) expectEndStatement(node *Node) {
	if sc := p.expect(TokenSemicolon); sc != nil {
		node.extend(sc)
		return
	}
	p.reportAt(IssueEndStatement, SeverityError, node, p.cursor.prev())
}

// --- Child nodes ----------------------------------------------------------

type childMode int

const (
	childName childMode = iota
	childRef
)

func (p *Parser) parseChildNode(mode childMode) *Node {
	p.cursor.checkpoint()
	node := &Node{Kind: KindChildNode}

	if mode == childName {
		if first, last, ok := p.matchSlashKeyword("omit-if-no-ref"); ok {
			node.Omit = true
			node.extend(first)
			node.extend(last)
		}
	}

	labels := p.parseLabelAssigns()

	var name *Node
	if mode == childRef {
		if ref := p.parseNodePathRef(); ref != nil {
			node.Ref = ref
		} else if ref := p.parseLabelRef(); ref != nil {
			node.Ref = ref
		}
	} else {
		name = p.parseNodeName()
	}

	if node.Ref == nil && name == nil && !p.check(TokenLBrace) {
		p.cursor.rollback()
		return nil
	}
	// A bare name with no address and no brace is not a node; the caller
	// retries it as a property.
	if mode == childName && name != nil && !name.hasAddress && !p.check(TokenLBrace) {
		p.cursor.rollback()
		return nil
	}

	for _, l := range labels {
		node.AddChild(l)
	}
	if node.Ref != nil {
		node.AddChild(node.Ref)
		node.Name = node.Ref.Name
	}
	if name != nil {
		node.AddChild(name)
		node.Name = name.Name
	}
	if node.Ref == nil && name == nil {
		p.reportAt(IssueMissingNodeName, SeverityError, node, p.peek())
	}

	if lb := p.expect(TokenLBrace); lb != nil {
		node.extend(lb)
		p.parseNodeBody(node)
		p.closeNode(node)
	} else {
		p.reportAt(IssueCurlyOpen, SeverityError, node, p.cursor.prev())
		if p.check(TokenSemicolon) {
			node.extend(p.peek())
			p.advance()
		}
	}

	p.cursor.commit()
	return node
}

// parseNodeName glues adjacent name fragments into a node name and parses
// the optional '@' unit address.
func (p *Parser) parseNodeName() *Node {
	text, first, last := p.glueRun(isNodeNameFragment)
	if text == "" {
		return nil
	}
	node := &Node{Kind: KindNodeName, Name: text, First: first, Last: last}
	if !isLetter(text[0]) {
		p.report(IssueNodeNameStart, SeverityError, node, first, last)
	}
	if p.check(TokenAt) {
		at := p.peek()
		if !last.Adjacent(at) {
			p.reportAt(IssueAddressWhitespace, SeverityError, node, at)
		}
		p.advance()
		node.extend(at)
		node.hasAddress = true
		p.parseUnitAddress(node, at)
	}
	return node
}

func (p *Parser) parseUnitAddress(node *Node, at *Token) {
	prev := at
	for {
		comp, first, last := p.glueRun(isAddressFragment)
		if comp == "" {
			p.reportAt(IssueMissingValue, SeverityError, node, p.peek())
			return
		}
		if !prev.Adjacent(first) {
			p.report(IssueAddressWhitespace, SeverityError, node, prev, first)
		}
		node.extend(last)
		if strings.HasPrefix(comp, "0x") || strings.HasPrefix(comp, "0X") {
			p.report(IssueAddressHexPrefix, SeverityWarning, node, first, last)
			comp = comp[2:]
		}
		if strings.HasSuffix(comp, "ULL") {
			p.report(IssueAddressULLSuffix, SeverityWarning, node, first, last)
			comp = comp[:len(comp)-3]
		}
		if isHexString(comp) {
			node.Address = append(node.Address, decodeAddress(comp)...)
		} else {
			p.report(IssueUnknownToken, SeverityError, node, first, last)
		}
		if !p.check(TokenComma) {
			return
		}
		comma := p.peek()
		if !last.Adjacent(comma) {
			p.reportAt(IssueAddressWhitespace, SeverityError, node, comma)
		}
		p.advance()
		node.extend(comma)
		prev = comma
	}
}

// --- Labels and references ------------------------------------------------

func (p *Parser) parseLabelAssigns() []*Node {
	var labels []*Node
	for {
		l := p.parseLabelAssign()
		if l == nil {
			return labels
		}
		labels = append(labels, l)
	}
}

func (p *Parser) parseLabelAssign() *Node {
	p.cursor.checkpoint()
	tok := p.peek()
	if tok == nil || tok.Kind != TokenLetters {
		p.cursor.rollback()
		return nil
	}
	p.advance()
	colon := p.peek()
	if colon == nil || colon.Kind != TokenColon {
		p.cursor.rollback()
		return nil
	}
	p.advance()
	p.cursor.commit()
	return &Node{Kind: KindLabelAssign, Name: tok.Literal, First: tok, Last: colon}
}

func (p *Parser) parseLabelRef() *Node {
	if !p.check(TokenAmp) {
		return nil
	}
	p.cursor.checkpoint()
	amp := p.advance()
	node := &Node{Kind: KindLabelRef, First: amp, Last: amp}
	tok := p.peek()
	if tok == nil || tok.Kind != TokenLetters {
		p.reportAt(IssueMissingLabelName, SeverityError, node, amp)
		p.cursor.commit()
		return node
	}
	if !amp.Adjacent(tok) {
		p.report(IssueWhitespaceNotAllowed, SeverityError, node, amp, tok)
	}
	p.advance()
	node.Name = tok.Literal
	node.extend(tok)
	p.cursor.commit()
	return node
}

// parseNodePathRef parses "&{/a/b@addr}". Adjacency between '&', '{', the
// path segments, and '}' is enforced; each violation gets its own issue
// while the rule still returns a best-effort path.
func (p *Parser) parseNodePathRef() *Node {
	if !p.check(TokenAmp) {
		return nil
	}
	next := p.cursor.peekN(1)
	if next == nil || next.Kind != TokenLBrace {
		return nil
	}
	p.cursor.checkpoint()
	amp := p.advance()
	lb := p.advance()
	node := &Node{Kind: KindNodePathRef, First: amp, Last: lb}
	if !amp.Adjacent(lb) {
		p.report(IssueWhitespaceNotAllowed, SeverityError, node, amp, lb)
	}
	path := &Node{Kind: KindNodePath, First: lb, Last: lb}

	if !p.check(TokenSlash) {
		p.reportAt(IssueMissingForwardSlash, SeverityError, node, p.peek())
	}
	prev := lb
	for {
		if p.check(TokenSlash) {
			slash := p.peek()
			if !prev.Adjacent(slash) {
				p.report(IssueWhitespaceNotAllowed, SeverityError, node, prev, slash)
			}
			p.advance()
			path.extend(slash)
			prev = slash
		} else if len(path.Path) > 0 {
			break
		}
		if p.check(TokenRBrace) {
			// "&{/}" refers to the root node.
			break
		}
		seg := p.parseNodeName()
		if seg == nil {
			p.reportAt(IssueMissingNodeName, SeverityError, node, p.peek())
			break
		}
		if !prev.Adjacent(seg.First) {
			p.report(IssueWhitespaceNotAllowed, SeverityError, node, prev, seg.First)
		}
		path.AddChild(seg)
		path.Path = append(path.Path, seg.Name)
		prev = seg.Last
	}
	node.AddChild(path)
	node.Path = path.Path
	if rb := p.expect(TokenRBrace); rb != nil {
		if rb.Prev != nil && !rb.Prev.Adjacent(rb) {
			p.reportAt(IssueWhitespaceNotAllowed, SeverityError, node, rb)
		}
		node.extend(rb)
	} else {
		p.reportAt(IssueCurlyClose, SeverityError, node, p.cursor.prev())
	}
	if len(node.Path) > 0 {
		node.Name = node.Path[len(node.Path)-1]
	}
	p.cursor.commit()
	return node
}

// --- Properties and values ------------------------------------------------

func (p *Parser) parseProperty() *Node {
	p.cursor.checkpoint()
	labels := p.parseLabelAssigns()

	text, first, last := p.glueRun(isPropertyNameFragment)
	if text == "" {
		p.cursor.rollback()
		return nil
	}
	// A name followed by '{' or '@' is a node, not a property.
	if p.check(TokenLBrace) || p.check(TokenAt) {
		p.cursor.rollback()
		return nil
	}

	node := &Node{Kind: KindProperty, Name: text}
	for _, l := range labels {
		node.AddChild(l)
	}
	node.extend(first)
	node.extend(last)

	if eq := p.expect(TokenAssign); eq != nil {
		node.extend(eq)
		values := p.parsePropertyValues(node)
		node.AddChild(values)
	}
	// Absence of '=' means a boolean property.

	p.expectEndStatement(node)
	p.cursor.commit()
	return node
}

// parsePropertyValues parses the comma-separated value list after '='. A
// missing value between separators is preserved as a nil slot so later
// slots keep their positions.
func (p *Parser) parsePropertyValues(prop *Node) *Node {
	values := &Node{Kind: KindPropertyValues}
	for {
		v := p.parseValue()
		if v != nil {
			values.Slots = append(values.Slots, v)
			values.AddChild(v)
		} else {
			values.Slots = append(values.Slots, nil)
			p.report(IssueMissingValue, SeverityError, prop, p.cursor.prev(), p.peek())
		}
		if comma := p.expect(TokenComma); comma != nil {
			values.extend(comma)
			continue
		}
		// Another value with no separating comma keeps the list going so a
		// single typo does not cascade.
		if next := p.peek(); next != nil {
			switch next.Kind {
			case TokenString, TokenLT, TokenLBracket, TokenAmp:
				p.report(IssueMissingComma, SeverityError, prop, p.cursor.prev(), next)
				continue
			}
		}
		return values
	}
}

// parseValue tries the value alternatives in fixed priority order: string,
// node-path reference, label reference, cell array, byte string, then a
// preprocessor expression. Leading and trailing label assignments attach to
// the value.
func (p *Parser) parseValue() *Node {
	p.cursor.checkpoint()
	labels := p.parseLabelAssigns()

	var v *Node
	for {
		if v = p.parseStringValue(); v != nil {
			break
		}
		if v = p.parseNodePathRef(); v != nil {
			break
		}
		if v = p.parseLabelRef(); v != nil {
			break
		}
		if v = p.parseCellArray(); v != nil {
			break
		}
		if v = p.parseByteString(); v != nil {
			break
		}
		if p.tryInjectMacro() {
			continue
		}
		if v = p.parseMacroExpr(); v != nil {
			break
		}
		p.cursor.rollback()
		return nil
	}

	for _, l := range labels {
		v.AddChild(l)
	}
	for _, l := range p.parseLabelAssigns() {
		v.AddChild(l)
	}
	p.cursor.commit()
	return v
}

func (p *Parser) parseStringValue() *Node {
	tok := p.expect(TokenString)
	if tok == nil {
		return nil
	}
	return &Node{Kind: KindStringValue, Text: strings.Trim(tok.Literal, "\""), First: tok, Last: tok}
}

func (p *Parser) parseNumber() *Node {
	tok := p.peek()
	if tok == nil {
		return nil
	}
	switch tok.Kind {
	case TokenDigits:
		p.advance()
		v, _ := strconv.ParseUint(tok.Literal, 10, 64)
		return &Node{Kind: KindNumberValue, Value: v, Base: 10, First: tok, Last: tok}
	case TokenHex:
		p.advance()
		v, _ := strconv.ParseUint(tok.Literal[2:], 16, 64)
		return &Node{Kind: KindNumberValue, Value: v, Base: 16, First: tok, Last: tok}
	}
	return nil
}

// parseCellArray parses "< ... >": a sequence of labeled scalar cells. A
// missing closing '>' is reported but does not abort the enclosing
// property.
func (p *Parser) parseCellArray() *Node {
	lt := p.expect(TokenLT)
	if lt == nil {
		return nil
	}
	arr := &Node{Kind: KindCellArray, First: lt, Last: lt}
	var pending []*Node
	for {
		if gt := p.expect(TokenGT); gt != nil {
			arr.extend(gt)
			break
		}
		if p.cursor.atEnd() || p.check(TokenSemicolon) || p.check(TokenComma) {
			p.reportAt(IssueCloseBracket, SeverityError, arr, p.cursor.prev())
			break
		}
		if l := p.parseCellLabel(); l != nil {
			pending = append(pending, l)
			continue
		}
		if p.tryInjectMacro() {
			continue
		}
		scalar := p.parseCellScalar()
		if scalar == nil {
			tok := p.advance()
			p.reportAt(IssueUnknownToken, SeverityError, arr, tok)
			continue
		}
		cell := &Node{Kind: KindCell}
		for _, l := range pending {
			cell.AddChild(l)
		}
		pending = nil
		cell.AddChild(scalar)
		arr.AddChild(cell)
	}
	// Trailing labels with no following value attach to the array itself.
	for _, l := range pending {
		arr.AddChild(l)
	}
	return arr
}

// parseCellLabel accepts "name:" anywhere in a cell list. A bare name
// immediately followed by a numeric or reference cell is tolerated as a
// label missing its colon and flagged with a warning; anything else is left
// for the scalar alternatives.
func (p *Parser) parseCellLabel() *Node {
	if l := p.parseLabelAssign(); l != nil {
		return l
	}
	tok := p.peek()
	if tok == nil || tok.Kind != TokenLetters {
		return nil
	}
	next := p.cursor.peekN(1)
	if next == nil {
		return nil
	}
	switch next.Kind {
	case TokenDigits, TokenHex, TokenAmp:
		p.advance()
		l := &Node{Kind: KindLabelAssign, Name: tok.Literal, First: tok, Last: tok}
		p.reportAt(IssueLabelMissingColon, SeverityWarning, l, tok)
		return l
	}
	return nil
}

func (p *Parser) parseCellScalar() *Node {
	if n := p.parseNumber(); n != nil {
		return n
	}
	if n := p.parseNodePathRef(); n != nil {
		return n
	}
	if n := p.parseLabelRef(); n != nil {
		return n
	}
	return p.parseMacroExpr()
}

// parseByteString parses "[ ... ]": whitespace-separated hex runs, each
// split into byte pairs. An odd nibble count yields a warning, not a
// failure; the short trailing nibble still becomes a byte value.
func (p *Parser) parseByteString() *Node {
	lb := p.expect(TokenLBracket)
	if lb == nil {
		return nil
	}
	node := &Node{Kind: KindByteString, First: lb, Last: lb}
	for {
		if rb := p.expect(TokenRBracket); rb != nil {
			node.extend(rb)
			return node
		}
		if p.cursor.atEnd() || p.check(TokenSemicolon) || p.check(TokenComma) {
			p.reportAt(IssueCloseBracket, SeverityError, node, p.cursor.prev())
			return node
		}
		if l := p.parseLabelAssign(); l != nil {
			node.AddChild(l)
			continue
		}
		text, first, last := p.glueRun(isAddressFragment)
		if text == "" {
			tok := p.advance()
			p.reportAt(IssueByteStringHex, SeverityError, node, tok)
			continue
		}
		if !isHexString(text) {
			issue := &Node{Kind: KindByteValue, First: first, Last: last}
			node.AddChild(issue)
			p.report(IssueByteStringHex, SeverityError, issue, first, last)
			continue
		}
		if len(text)%2 != 0 {
			p.report(IssueByteStringEven, SeverityWarning, node, first, last)
		}
		for i := 0; i < len(text); i += 2 {
			end := i + 2
			if end > len(text) {
				end = len(text)
			}
			v, _ := strconv.ParseUint(text[i:end], 16, 8)
			node.AddChild(&Node{Kind: KindByteValue, Value: v, Base: 16, First: first, Last: last})
		}
	}
}

// parseMacroExpr captures a bare identifier, a function-call-shaped
// expression, or a parenthesized expression as an opaque preprocessor
// expression. It is the lowest-priority value alternative.
func (p *Parser) parseMacroExpr() *Node {
	tok := p.peek()
	if tok == nil {
		return nil
	}
	switch tok.Kind {
	case TokenLetters:
		p.advance()
		node := &Node{Kind: KindMacroExpr, Name: tok.Literal, Text: tok.Literal, First: tok, Last: tok}
		if p.check(TokenLParen) {
			text, last := p.consumeBalancedParens()
			node.Text += text
			node.extend(last)
		}
		return node
	case TokenLParen:
		node := &Node{Kind: KindMacroExpr, First: tok}
		text, last := p.consumeBalancedParens()
		node.Text = text
		node.extend(last)
		return node
	}
	return nil
}

// consumeBalancedParens consumes from the current '(' through its matching
// ')', returning the raw text and the final token. A missing ')' at end of
// stream or statement reports a close-bracket issue.
func (p *Parser) consumeBalancedParens() (string, *Token) {
	var sb strings.Builder
	depth := 0
	var prev, last *Token
	for {
		tok := p.peek()
		if tok == nil || tok.Kind == TokenSemicolon {
			p.reportAt(IssueCloseBracket, SeverityError, nil, last)
			return sb.String(), last
		}
		p.advance()
		if prev != nil && !prev.Adjacent(tok) {
			sb.WriteString(" ")
		}
		sb.WriteString(tok.Literal)
		prev, last = tok, tok
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return sb.String(), last
			}
		}
	}
}

// --- Deletions ------------------------------------------------------------

type targetMode int

const (
	targetName targetMode = iota
	targetRef
)

// parseDeleteStatement recognizes "/delete-node/" and "/delete-property/"
// by incremental prefix matching, so a partially typed keyword still yields
// a delete-shaped node with a specific diagnostic instead of a generic
// unknown-token error.
func (p *Parser) parseDeleteStatement(mode targetMode) *Node {
	p.cursor.checkpoint()
	slash := p.expect(TokenSlash)
	if slash == nil {
		p.cursor.rollback()
		return nil
	}
	next := p.peek()
	if next == nil || next.Kind != TokenLetters || !slash.Adjacent(next) {
		p.cursor.rollback()
		return nil
	}
	text, _, kwLast := p.glueRun(isKeywordFragment)

	const nodeKW, propKW = "delete-node", "delete-property"
	var node *Node
	complete := false
	switch {
	case text == nodeKW:
		node = &Node{Kind: KindDeleteNode, First: slash, Last: kwLast}
		complete = true
	case text == propKW:
		node = &Node{Kind: KindDeleteProperty, First: slash, Last: kwLast}
		complete = true
	case strings.HasPrefix(propKW, text) && !strings.HasPrefix(nodeKW, text):
		node = &Node{Kind: KindDeleteProperty, First: slash, Last: kwLast}
	case strings.HasPrefix(nodeKW, text):
		node = &Node{Kind: KindDeleteNode, First: slash, Last: kwLast}
	default:
		p.cursor.rollback()
		return nil
	}

	if !complete {
		// A partially typed keyword gets its one specific diagnostic and
		// nothing else; demanding a target or terminator would only pile
		// noise on top.
		p.report(IssueDeleteIncomplete, SeverityError, node, slash, kwLast)
		p.cursor.commit()
		return node
	}
	if closing := p.peek(); closing != nil && closing.Kind == TokenSlash && kwLast.Adjacent(closing) {
		p.advance()
		node.extend(closing)
	} else {
		p.report(IssueDeleteIncomplete, SeverityError, node, slash, kwLast)
	}

	p.parseDeleteTarget(node, mode)
	p.expectEndStatement(node)
	p.cursor.commit()
	return node
}

// parseDeleteTarget parses the deletion target, which must sit on the same
// line as the keyword.
func (p *Parser) parseDeleteTarget(node *Node, mode targetMode) {
	kwEnd := node.Last
	tok := p.peek()
	if tok == nil || !kwEnd.SameLine(tok) {
		p.reportAt(IssueMissingTarget, SeverityError, node, kwEnd)
		return
	}

	if node.Kind == KindDeleteProperty {
		text, first, last := p.glueRun(isPropertyNameFragment)
		if text == "" {
			if ref := p.parseNodePathRef(); ref != nil {
				node.Ref = ref
				node.AddChild(ref)
				p.report(IssueWrongTargetKind, SeverityError, node, ref.First, ref.Last)
				return
			}
			if ref := p.parseLabelRef(); ref != nil {
				node.Ref = ref
				node.AddChild(ref)
				p.report(IssueWrongTargetKind, SeverityError, node, ref.First, ref.Last)
				return
			}
			p.reportAt(IssueMissingTarget, SeverityError, node, p.peek())
			return
		}
		node.Name = text
		node.extend(first)
		node.extend(last)
		return
	}

	if ref := p.parseNodePathRef(); ref != nil {
		node.Ref = ref
		node.AddChild(ref)
		if mode == targetName {
			p.report(IssueWrongTargetKind, SeverityError, node, ref.First, ref.Last)
		}
		return
	}
	if ref := p.parseLabelRef(); ref != nil {
		node.Ref = ref
		node.AddChild(ref)
		if mode == targetName {
			p.report(IssueWrongTargetKind, SeverityError, node, ref.First, ref.Last)
		}
		return
	}
	if name := p.parseNodeName(); name != nil {
		node.Name = name.Name
		node.AddChild(name)
		if mode == targetRef {
			p.report(IssueWrongTargetKind, SeverityError, node, name.First, name.Last)
		}
		return
	}
	p.reportAt(IssueMissingTarget, SeverityError, node, p.peek())
}

// --- Comment attachment ---------------------------------------------------

// attachComments runs after parsing and attaches each floating comment to
// the nearest enclosing node, so documentation symbols and include
// directives keep their surrounding commentary.
func (p *Parser) attachComments() {
	if p.doc == nil {
		return
	}
	for _, c := range p.comments {
		host := deepestContaining(p.doc, c.Span)
		if host == nil {
			host = p.doc
		}
		attachComment(host, c)
	}
}

func deepestContaining(n *Node, span Span) *Node {
	if !n.Span().Contains(span) && n.Kind != KindDocument {
		return nil
	}
	for _, child := range n.Children {
		if d := deepestContaining(child, span); d != nil {
			return d
		}
	}
	if n.Kind == KindDocument {
		return nil
	}
	return n
}

// attachComment files the comment before the first child that starts after
// it, or after the node when no such child exists.
func attachComment(host *Node, c *Token) {
	for _, child := range host.Children {
		if child.First != nil && child.First.Span.Start.Offset >= c.Span.End.Offset {
			child.CommentsBefore = append(child.CommentsBefore, c)
			return
		}
	}
	if host.Kind == KindDocument {
		if len(host.Children) > 0 {
			last := host.Children[len(host.Children)-1]
			last.CommentsAfter = append(last.CommentsAfter, c)
		}
		return
	}
	host.CommentsAfter = append(host.CommentsAfter, c)
}
