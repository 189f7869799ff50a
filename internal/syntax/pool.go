// Package syntax owns the tree-sitter parsers and produces syntax trees for
// every supported dialect. One parser per grammar is created lazily and
// reused; access to a given parser is serialized so concurrent reparses for
// different documents of the same dialect never interleave on one instance.
package syntax

import (
	"errors"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tshtml "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tstypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"wcaglsp/internal/dialect"
)

// ErrUnsupportedDialect is returned when no grammar covers the dialect.
var ErrUnsupportedDialect = errors.New("syntax: unsupported dialect")

// ErrParse is returned when the grammar produced no tree at all. Trees with
// error-marked regions are not failures; rules tolerate them.
var ErrParse = errors.New("syntax: parse produced no tree")

// Language returns the tree-sitter grammar for a dialect. Template-host
// dialects resolve to the HTML grammar.
func Language(d dialect.Dialect) *sitter.Language {
	switch d {
	case dialect.HTML, dialect.Vue, dialect.Svelte:
		return sitter.NewLanguage(tshtml.Language())
	case dialect.JSX:
		return sitter.NewLanguage(tsjavascript.Language())
	case dialect.TSX:
		return sitter.NewLanguage(tstypescript.LanguageTSX())
	}
	return nil
}

type pooled struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// Pool hands out one reusable parser per dialect grammar.
type Pool struct {
	mu      sync.Mutex
	entries map[dialect.Dialect]*pooled
}

// NewPool returns an empty pool; parsers are created on first use.
func NewPool() *Pool {
	return &Pool{entries: make(map[dialect.Dialect]*pooled)}
}

func (p *Pool) checkout(d dialect.Dialect) (*pooled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[d]; ok {
		return e, nil
	}
	lang := Language(d)
	if lang == nil {
		return nil, ErrUnsupportedDialect
	}
	parser := sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, err
	}
	e := &pooled{parser: parser}
	p.entries[d] = e
	return e, nil
}

// Parse derives a tree for source. When prev is non-nil it must already
// carry the edit (Tree.Edit) describing how source differs from the text it
// was parsed from; re-derivation cost is then driven by the changed region
// only. The result is indistinguishable from parsing source from scratch.
func (p *Pool) Parse(d dialect.Dialect, source []byte, prev *sitter.Tree) (*sitter.Tree, error) {
	e, err := p.checkout(d)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	tree := e.parser.Parse(source, prev)
	if tree == nil {
		// The parser was interrupted or the grammar is unusable; reset so
		// the instance stays reusable for the next call.
		e.parser.Reset()
		return nil, ErrParse
	}
	return tree, nil
}

// Close releases every parser held by the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for d, e := range p.entries {
		e.mu.Lock()
		e.parser.Close()
		e.mu.Unlock()
		delete(p.entries, d)
	}
}
