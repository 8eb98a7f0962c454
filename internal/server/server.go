// Package server holds the state shared by all requests: open documents,
// configuration, client capabilities and the semantic token machinery.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Server is the state of one language server session. Documents carry
// their own locks; mu guards the session fields only.
type Server struct {
	documents *DocumentStore
	legend    *SemanticTokensLegend
	tokens    *SemanticTokensCache
	metrics   *Metrics

	mu           sync.RWMutex
	config       *Config
	client       *protocol.ClientCapabilities
	hoverFormat  protocol.MarkupKind
	shuttingDown bool
}

// New creates a server with the default configuration.
func New() *Server {
	return NewWithConfig(DefaultConfig(), NewMetrics())
}

// NewWithConfig creates a server using a copy of cfg. m may be nil.
func NewWithConfig(cfg *Config, m *Metrics) *Server {
	return &Server{
		documents:   NewDocumentStore(),
		legend:      NewSemanticTokensLegend(),
		tokens:      NewSemanticTokensCache(),
		metrics:     m,
		config:      cfg.Clone(),
		hoverFormat: protocol.MarkupKindMarkdown,
	}
}

func (s *Server) Documents() *DocumentStore { return s.documents }

func (s *Server) Metrics() *Metrics { return s.metrics }

// SemanticTokensLegend returns the legend advertised at initialization.
// It never changes.
func (s *Server) SemanticTokensLegend() *SemanticTokensLegend { return s.legend }

func (s *Server) SemanticTokensCache() *SemanticTokensCache { return s.tokens }

// Config returns a copy of the current configuration.
func (s *Server) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// UpdateConfig runs update on the live configuration under the write lock.
func (s *Server) UpdateConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.config)
}

// SetClientCapabilities records what the client announced in initialize
// and derives the hover format from it.
func (s *Server) SetClientCapabilities(c *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
	s.hoverFormat = preferredHoverFormat(c)
}

func (s *Server) ClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// HoverFormat is markdown unless the client lists only other formats.
func (s *Server) HoverFormat() protocol.MarkupKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hoverFormat
}

func preferredHoverFormat(c *protocol.ClientCapabilities) protocol.MarkupKind {
	if c == nil || c.TextDocument == nil || c.TextDocument.Hover == nil {
		return protocol.MarkupKindMarkdown
	}
	formats := c.TextDocument.Hover.ContentFormat
	if len(formats) == 0 {
		return protocol.MarkupKindMarkdown
	}
	for _, kind := range formats {
		if kind == protocol.MarkupKindMarkdown {
			return kind
		}
	}
	return protocol.MarkupKindPlainText
}

func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}
