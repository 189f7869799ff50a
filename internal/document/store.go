// Package document owns per-identity document state: current source text,
// the syntax tree derived from it, the dialect tag and the caller-supplied
// version. The tree always reflects exactly the current text — both are
// replaced together under the document's lock, never partially. Trees never
// escape the store: callers borrow them inside With, which also serializes
// edits, reparses and diagnostic runs for one document while leaving other
// documents free to proceed.
package document

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/dialect"
	"wcaglsp/internal/syntax"
)

// Document is the state for one open identity.
type Document struct {
	URI     string
	Dialect dialect.Dialect
	Source  string
	Tree    *sitter.Tree
	Version int
}

type entry struct {
	mu  sync.Mutex
	doc Document
	// closed marks an entry removed while a borrower was waiting on mu.
	closed bool
}

// Store holds every open document, keyed by identity.
type Store struct {
	mu   sync.Mutex
	pool *syntax.Pool
	docs map[string]*entry
}

// NewStore builds a store backed by the given parser pool.
func NewStore(pool *syntax.Pool) *Store {
	return &Store{pool: pool, docs: make(map[string]*entry)}
}

// Open creates state for a new document. The dialect is inferred from the
// identity suffix; unsupported suffixes create nothing and return false —
// the caller treats absence as "not diagnosable", not as an error.
func (s *Store) Open(uri, text string, version int) bool {
	d := dialect.FromPath(uri)
	if !d.Supported() {
		return false
	}
	tree, err := s.pool.Parse(d, []byte(text), nil)
	if err != nil {
		return false
	}
	e := &entry{doc: Document{
		URI:     uri,
		Dialect: d,
		Source:  text,
		Tree:    tree,
		Version: version,
	}}

	s.mu.Lock()
	old, existed := s.docs[uri]
	s.docs[uri] = e
	s.mu.Unlock()
	if existed {
		retire(old)
	}
	return true
}

// Update replaces text and tree together. The previous tree is edited with
// the diff between old and new text so the reparse is incremental; the
// result is indistinguishable from parsing newText from scratch. Updates
// for unknown identities are a no-op.
func (s *Store) Update(uri, newText string, version int) bool {
	s.mu.Lock()
	e, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	// The edit is applied to a clone so the stored tree keeps matching
	// the stored source until the reparse has actually succeeded.
	edit := syntax.DiffEdit(e.doc.Source, newText)
	edited := e.doc.Tree.Clone()
	edited.Edit(&edit)
	tree, err := s.pool.Parse(e.doc.Dialect, []byte(newText), edited)
	edited.Close()
	if err != nil {
		// The grammar always yields a tree for markup input, so this only
		// happens when the parser was interrupted. Re-derive from scratch.
		tree, err = s.pool.Parse(e.doc.Dialect, []byte(newText), nil)
		if err != nil {
			return false
		}
	}
	e.doc.Tree.Close()
	e.doc.Tree = tree
	e.doc.Source = newText
	e.doc.Version = version
	return true
}

// Close removes a document. Closing an unknown identity is a no-op.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	e, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if ok {
		retire(e)
	}
}

// CloseAll drops every document, releasing the trees.
func (s *Store) CloseAll() {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.docs))
	for uri, e := range s.docs {
		entries = append(entries, e)
		delete(s.docs, uri)
	}
	s.mu.Unlock()
	for _, e := range entries {
		retire(e)
	}
}

func retire(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.doc.Tree.Close()
		e.doc.Tree = nil
		e.closed = true
	}
}

// With borrows the document under its lock. The tree handed to fn is valid
// only for the duration of the call; fn must not retain it. Returns false
// for unknown identities.
func (s *Store) With(uri string, fn func(doc *Document)) bool {
	s.mu.Lock()
	e, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	fn(&e.doc)
	return true
}

// Version returns the caller-supplied version of an open document.
func (s *Store) Version(uri string) (int, bool) {
	var v int
	ok := s.With(uri, func(doc *Document) { v = doc.Version })
	return v, ok
}

// Len reports the number of open documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
