package lsp

import (
	"encoding/json"

	"wcaglsp/internal/config"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) > 0 {
		var params didChangeConfigurationParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.applySettings(params.Settings)
		}
	}
	// The workspace config file is the source of truth for rule
	// behavior; re-read it and re-lint everything that is open.
	s.mu.Lock()
	root := s.workspaceRoot
	pinned := s.cfgPinned
	s.mu.Unlock()
	if !pinned {
		s.setConfig(config.LoadWorkspace(root))
	}
	s.rescheduleAll()
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.WcagLSP.Trace != nil {
		s.traceLSP = *settings.WcagLSP.Trace
	}
}
