package lsp

import (
	"time"

	"wcaglsp/internal/config"
	"wcaglsp/internal/diag"
	"wcaglsp/internal/document"
	"wcaglsp/internal/engine"
)

// scheduleDiagnostics arms (or re-arms) the debounce timer for one
// document. Every call bumps the document's generation, so a timer that
// fires for a stale generation finds the mismatch and discards itself.
// Rapid edits therefore keep sliding the window forward and only the
// state after the last edit gets diagnosed.
func (s *Server) scheduleDiagnostics(uri string) {
	s.mu.Lock()
	s.generations[uri]++
	gen := s.generations[uri]
	if t := s.timers[uri]; t != nil {
		t.Stop()
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(uri, gen)
	})
	s.mu.Unlock()
}

func (s *Server) currentGeneration(uri string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen, ok := s.generations[uri]
	return gen, ok
}

// runDiagnostics executes one debounced diagnostic run. The generation
// is checked twice: once before doing any work and once again before
// publishing, so results computed for superseded document states are
// never sent to the client.
func (s *Server) runDiagnostics(uri string, gen uint64) {
	if cur, ok := s.currentGeneration(uri); !ok || cur != gen {
		s.traceDiscard(uri, gen, "superseded before run")
		return
	}
	s.mu.Lock()
	cfg := s.cfg
	maxDiagnostics := s.maxDiagnostics
	s.mu.Unlock()

	if path := uriToPath(uri); path != "" && cfg.Ignored(path) {
		// Ignored documents always read as clean.
		s.publishDiagnostics(uri, gen, 0, nil)
		return
	}

	var (
		list       []lspDiagnostic
		docVersion int
	)
	ok := s.store.With(uri, func(doc *document.Document) {
		docVersion = doc.Version
		result := engine.Run(doc.Tree.RootNode(), []byte(doc.Source), doc.Dialect, engine.Enabled(cfg))
		for _, failure := range result.Failures {
			s.logf("rule %s failed on %s at %d:%d: %v",
				failure.RuleID, uri, failure.Span.Start.Line, failure.Span.Start.Col, failure.Err)
		}
		resolved := engine.Resolve(result.Findings, cfg)
		if len(resolved) > maxDiagnostics {
			resolved = resolved[:maxDiagnostics]
		}
		list = toLSPDiagnostics(resolved)
	})
	if !ok {
		s.traceDiscard(uri, gen, "closed during run")
		return
	}
	s.publishDiagnostics(uri, gen, docVersion, list)
}

// publishDiagnostics sends the result of a run, provided the run is
// still the latest for its document.
func (s *Server) publishDiagnostics(uri string, gen uint64, docVersion int, list []lspDiagnostic) {
	s.mu.Lock()
	cur, open := s.generations[uri]
	if !open || cur != gen {
		s.mu.Unlock()
		s.traceDiscard(uri, gen, "superseded before publish")
		return
	}
	if len(list) > 0 {
		s.published[uri] = true
	} else {
		delete(s.published, uri)
	}
	s.mu.Unlock()

	// Every surviving run publishes, clean results included, so the
	// client's view follows the latest analysis rather than its history.
	if err := s.sendPublish(uri, docVersion, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
		return
	}
	if s.currentTrace() {
		s.logf("publishDiagnostics: uri=%s version=%d diags=%d", uri, docVersion, len(list))
	}
}

// rescheduleAll re-arms the debounce timer for every open document,
// used after a configuration change.
func (s *Server) rescheduleAll() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.generations))
	for uri := range s.generations {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.scheduleDiagnostics(uri)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]bool)
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, 0, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) setConfig(cfg config.Snapshot) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Server) traceDiscard(uri string, gen uint64, reason string) {
	if !s.currentTrace() {
		return
	}
	s.logf("discard run: uri=%s gen=%d reason=%s", uri, gen, reason)
}

func toLSPDiagnostics(in []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(in))
	for _, d := range in {
		item := lspDiagnostic{
			Range: lspRange{
				Start: position{Line: d.Span.Start.Line, Character: d.Span.Start.Col},
				End:   position{Line: d.Span.End.Line, Character: d.Span.End.Col},
			},
			Severity: d.Severity.LSP(),
			Code:     d.RuleID,
			Source:   diag.Source,
			Message:  d.Message,
		}
		if d.DocsURL != "" {
			item.CodeDescription = &codeDescription{Href: d.DocsURL}
		}
		out = append(out, item)
	}
	return out
}
