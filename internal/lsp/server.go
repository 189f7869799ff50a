// Package lsp implements the stdio JSON-RPC language server. Document
// lifecycle notifications feed the document store, and a per-document
// debounce scheduler turns settled edits into published diagnostics.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wcaglsp/internal/config"
	"wcaglsp/internal/document"
	"wcaglsp/internal/syntax"
	"wcaglsp/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce       time.Duration
	MaxDiagnostics int
	// Config, when set, replaces the workspace config loaded at
	// initialize time. Used by tests and the --config flag.
	Config *config.Snapshot
	Trace  bool
}

// Server handles stdio JSON-RPC for the accessibility language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	pool  *syntax.Pool
	store *document.Store

	mu                sync.Mutex
	cfg               config.Snapshot
	cfgPinned         bool
	workspaceRoot     string
	shutdownRequested bool
	debounce          time.Duration
	maxDiagnostics    int
	generations       map[string]uint64
	timers            map[string]*time.Timer
	published         map[string]bool
	traceLSP          bool

	baseCtx context.Context
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	cfg := config.Default()
	pinned := false
	if opts.Config != nil {
		cfg = *opts.Config
		pinned = true
	}
	pool := syntax.NewPool()
	return &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		pool:           pool,
		store:          document.NewStore(pool),
		cfg:            cfg,
		cfgPinned:      pinned,
		debounce:       debounce,
		maxDiagnostics: maxDiagnostics,
		generations:    make(map[string]uint64),
		timers:         make(map[string]*time.Timer),
		published:      make(map[string]bool),
		traceLSP:       opts.Trace,
	}
}

// Run serves LSP requests until the client disconnects or sends exit.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	defer s.close()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdownRequested() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	if !s.cfgPinned {
		s.cfg = config.LoadWorkspace(root)
	}
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
		},
		ServerInfo: serverInfo{
			Name:    "wcag-lsp",
			Version: version.Version,
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	if !s.store.Open(uri, params.TextDocument.Text, params.TextDocument.Version) {
		// Unsupported file type; the client gets no diagnostics for it.
		if s.currentTrace() {
			s.logf("didOpen: uri=%s unsupported", uri)
		}
		return nil
	}
	if s.currentTrace() {
		s.logf("didOpen: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	text := ""
	if !s.store.With(uri, func(doc *document.Document) {
		text = doc.Source
	}) {
		return nil
	}
	text = applyChanges(text, params.ContentChanges)
	if !s.store.Update(uri, text, params.TextDocument.Version) {
		return nil
	}
	if s.currentTrace() {
		s.logf("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	version, ok := s.store.Version(uri)
	if !ok {
		return nil
	}
	if params.Text != nil {
		s.store.Update(uri, *params.Text, version)
	}
	if s.currentTrace() {
		s.logf("didSave: uri=%s version=%d", uri, version)
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	// Dropping the generation entry invalidates any in-flight run.
	delete(s.generations, uri)
	if t := s.timers[uri]; t != nil {
		t.Stop()
		delete(s.timers, uri)
	}
	delete(s.published, uri)
	s.mu.Unlock()
	s.store.Close(uri)
	// Closing always publishes the empty set so the client drops any
	// diagnostics it still holds for the document.
	if err := s.sendPublish(uri, 0, nil); err != nil {
		s.logf("failed to clear diagnostics: %v", err)
	}
	if s.currentTrace() {
		s.logf("didClose: uri=%s", uri)
	}
	return nil
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, docVersion int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     docVersion,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}

func (s *Server) isShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) currentTrace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}

func (s *Server) close() {
	s.mu.Lock()
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	s.mu.Unlock()
	s.store.CloseAll()
	s.pool.Close()
}
