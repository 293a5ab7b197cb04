// Package dts is the document-level layer over the devicetree parser: it
// owns one parse pipeline per source file, serializes reparse requests, and
// converts parser issues into LSP diagnostic records for downstream
// consumers.
package dts

import (
	"sync"

	"github.com/tliron/commonlog"

	"github.com/kylebonnici/dts-lsp-sub002/dts/parser"
)

var log = commonlog.GetLogger("dts")

// TokenSource is an override hook for obtaining tokens synchronously,
// used by tooling that wants to parse an in-memory edit without a real
// include resolution pass.
type TokenSource func() (tokens, comments []*parser.Token)

// ParseResult is one settled parse of a document. It is immutable once
// published.
type ParseResult struct {
	Root       *parser.Node
	Items      []*parser.Node
	Issues     []parser.Issue
	Generation uint64
}

// Document owns the parse state for a single devicetree source file.
// Overlapping Reparse calls for the same document serialize rather than
// interleave, and Stable never observes a torn result.
type Document struct {
	uri    string
	macros parser.MacroResolver
	source TokenSource

	parseMu sync.Mutex // serializes the actual parsing

	mu        sync.Mutex // guards the fields below
	cond      *sync.Cond
	requested uint64
	completed uint64
	latest    *ParseResult
}

type DocumentOption func(*Document)

// WithMacros supplies the preprocessor macro registry used for mid-parse
// injection.
func WithMacros(resolver parser.MacroResolver) DocumentOption {
	return func(d *Document) {
		d.macros = resolver
	}
}

// WithTokenSource overrides lexing with a caller-provided token stream.
func WithTokenSource(source TokenSource) DocumentOption {
	return func(d *Document) {
		d.source = source
	}
}

func NewDocument(uri string, opts ...DocumentOption) *Document {
	d := &Document{uri: uri}
	d.cond = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) URI() string {
	return d.uri
}

// Reparse discards all previous AST and diagnostic state and runs the full
// pipeline over src. Concurrent calls queue behind each other; the returned
// result is the one this call produced.
func (d *Document) Reparse(src []byte) *ParseResult {
	d.mu.Lock()
	d.requested++
	gen := d.requested
	d.mu.Unlock()

	d.parseMu.Lock()
	defer d.parseMu.Unlock()

	var p *parser.Parser
	if d.source != nil {
		tokens, comments := d.source()
		p = parser.ParseDocument(tokens,
			parser.WithFile(d.uri),
			parser.WithComments(comments),
			parser.WithMacros(d.macros))
	} else {
		p = parser.ParseSource(src, d.uri, parser.WithMacros(d.macros))
	}

	result := &ParseResult{
		Root:       p.Document(),
		Items:      p.AllAstItems(),
		Issues:     p.Issues(),
		Generation: gen,
	}
	log.Debugf("parsed %s: %d items, %d issues", d.uri, len(result.Items), len(result.Issues))

	d.mu.Lock()
	if gen > d.completed {
		d.completed = gen
		d.latest = result
	}
	d.cond.Broadcast()
	d.mu.Unlock()
	return result
}

// Stable blocks until every reparse requested before the call has landed,
// then returns the newest result. Returns nil when the document was never
// parsed.
func (d *Document) Stable() *ParseResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	target := d.requested
	for d.completed < target {
		d.cond.Wait()
	}
	return d.latest
}
