package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

var defaultLegend = server.NewSemanticTokensLegend()

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv := serverInstance; srv != nil {
		capabilities := params.Capabilities
		srv.SetClientCapabilities(&capabilities)
	}
	if params.Trace != nil {
		protocol.SetTraceValue(*params.Trace)
	}

	// Build server capabilities
	changeKind := protocol.TextDocumentSyncKindIncremental
	trueVal := true
	falseVal := false

	legend := serverLegend()

	capabilities := protocol.ServerCapabilities{
		// Text document synchronization
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			WillSave:  &falseVal,
		},

		HoverProvider:      &trueVal,
		DefinitionProvider: &trueVal,

		// Identifiers are completed as they are typed, so there are no
		// trigger characters.
		CompletionProvider: &protocol.CompletionOptions{
			ResolveProvider: &falseVal,
		},

		// Semantic tokens (semantic highlighting)
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: legend,
			Full: &protocol.SemanticDelta{
				Delta: &trueVal,
			},
		},
	}

	result := protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &Version,
		},
	}

	if params.ClientInfo != nil {
		log.Infof("Initializing for client %s", params.ClientInfo.Name)
	}
	return result, nil
}

// serverLegend returns the legend of the running server, or the default one
// before SetServer.
func serverLegend() protocol.SemanticTokensLegend {
	if srv := serverInstance; srv != nil {
		return srv.SemanticTokensLegend().ToProtocolLegend()
	}
	return defaultLegend.ToProtocolLegend()
}

// Initialized handles the initialized notification from the client.
// This is sent after the initialize response, signaling that the client is ready.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the shutdown request. Open documents are closed and
// their parsers released.
func Shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	srv := notificationServer(context)
	if srv == nil {
		return nil
	}

	srv.SetShuttingDown()
	for range srv.Documents().List() {
		srv.Metrics().DocumentClosed()
	}
	srv.Documents().Clear()
	srv.SemanticTokensCache().Clear()

	log.Info("Shut down")
	return nil
}

// SetTrace handles $/setTrace.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	if srv := notificationServer(context); srv != nil {
		srv.UpdateConfig(func(cfg *server.Config) {
			cfg.Trace = string(params.Value)
		})
	}
	return nil
}
