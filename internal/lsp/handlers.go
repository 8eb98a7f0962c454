// Package lsp implements LSP protocol handlers.
package lsp

import (
	contextpkg "context"
	"errors"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

const serverName = "sysy-lsp"

// Version is reported in the initialize result.
var Version = "0.1.0"

var log = commonlog.GetLogger("sysy-lsp.lsp")

// ErrServerUnavailable is returned by requests that arrive before SetServer.
var ErrServerUnavailable = errors.New("server instance not available")

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance *server.Server
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv *server.Server) {
	serverInstance = srv
}

// NewHandler returns the protocol handler with every supported method wired.
func NewHandler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidClose:  DidClose,

		TextDocumentHover:                   Hover,
		TextDocumentDefinition:              Definition,
		TextDocumentCompletion:              Completion,
		TextDocumentSemanticTokensFull:      SemanticTokensFull,
		TextDocumentSemanticTokensFullDelta: SemanticTokensFullDelta,

		WorkspaceDidChangeConfiguration: DidChangeConfiguration,
	}
}

// requestContext returns the context document operations run under. glsp
// does not cancel handlers, so there is nothing to derive from.
func requestContext() contextpkg.Context {
	return contextpkg.Background()
}

// withSnapshot looks up uri and runs fn against its current snapshot. The
// outcome is recorded under method.
func withSnapshot(method string, uri protocol.DocumentUri, fn func(*server.Server, *server.Snapshot) error) (err error) {
	srv := serverInstance
	if srv == nil {
		log.Warningf("%s: %s", method, ErrServerUnavailable)
		return ErrServerUnavailable
	}

	start := time.Now()
	defer func() {
		srv.Metrics().Request(method, err)
		if err != nil {
			log.Errorf("%s %s: %s", method, uri, err)
		} else {
			log.Debugf("%s %s took %v", method, uri, time.Since(start))
		}
	}()

	doc, err := srv.Documents().Lookup(uri)
	if err != nil {
		return err
	}

	return doc.Read(func(s *server.Snapshot) error {
		return fn(srv, s)
	})
}

// notificationServer returns the server for a notification handler, or nil
// after logging when none is set.
func notificationServer(context *glsp.Context) *server.Server {
	if serverInstance == nil {
		method := ""
		if context != nil {
			method = context.Method
		}
		log.Warningf("%s: %s", method, ErrServerUnavailable)
	}
	return serverInstance
}
