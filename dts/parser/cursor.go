package parser

// cursor is a positional cursor over the token stream with a stack of
// save-points for speculative parsing. Grammar rules push a checkpoint,
// try to consume their tokens, and either commit (keep the new position)
// or roll back (restore the saved one). The stack nests as deep as the
// grammar recursion does.
type cursor struct {
	tokens []*Token
	pos    int
	saves  []int
}

// peek returns the token at the cursor, or nil past the end.
func (c *cursor) peek() *Token {
	if c.pos >= len(c.tokens) {
		return nil
	}
	return c.tokens[c.pos]
}

func (c *cursor) peekN(n int) *Token {
	if c.pos+n >= len(c.tokens) || c.pos+n < 0 {
		return nil
	}
	return c.tokens[c.pos+n]
}

// prev returns the most recently consumed token, or nil at the start.
func (c *cursor) prev() *Token {
	return c.peekN(-1)
}

// advance returns the current token and moves forward; no-op past the end.
func (c *cursor) advance() *Token {
	tok := c.peek()
	if c.pos < len(c.tokens) {
		c.pos++
	}
	return tok
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.tokens)
}

func (c *cursor) checkpoint() {
	c.saves = append(c.saves, c.pos)
}

// commit discards the most recent save-point, keeping the cursor where it
// is. Called when a rule matched.
func (c *cursor) commit() {
	if len(c.saves) == 0 {
		panic("parser: commit without checkpoint")
	}
	c.saves = c.saves[:len(c.saves)-1]
}

// rollback restores the cursor to the most recent save-point. Called when a
// rule failed and a different alternative must be tried.
func (c *cursor) rollback() {
	if len(c.saves) == 0 {
		panic("parser: rollback without checkpoint")
	}
	c.pos = c.saves[len(c.saves)-1]
	c.saves = c.saves[:len(c.saves)-1]
}

func (c *cursor) depth() int {
	return len(c.saves)
}

// splice replaces count tokens starting at index at with repl, relinking
// the stream. The caller is responsible for repositioning the cursor.
func (c *cursor) splice(at, count int, repl []*Token) {
	out := make([]*Token, 0, len(c.tokens)-count+len(repl))
	out = append(out, c.tokens[:at]...)
	out = append(out, repl...)
	out = append(out, c.tokens[at+count:]...)
	c.tokens = out
	Link(c.tokens)
}
