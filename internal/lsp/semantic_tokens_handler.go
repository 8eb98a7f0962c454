package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/analysis"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// It returns semantic highlighting information for the entire document.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	var result *protocol.SemanticTokens

	uri := params.TextDocument.URI
	err := withSnapshot(protocol.MethodTextDocumentSemanticTokensFull, uri, func(srv *server.Server, s *server.Snapshot) error {
		entry, err := currentTokens(srv, s)
		if err != nil {
			return err
		}

		result = &protocol.SemanticTokens{
			ResultID: &entry.ResultID,
			Data:     analysis.EncodeSemanticTokens(entry.Tokens),
		}
		log.Debugf("Collected %d semantic tokens for %s", len(entry.Tokens), uri)
		return nil
	})

	return result, err
}

// SemanticTokensFullDelta handles textDocument/semanticTokens/full/delta.
// The previous result must be the latest one issued for the document;
// otherwise the full token set is returned.
func SemanticTokensFullDelta(context *glsp.Context, params *protocol.SemanticTokensDeltaParams) (any, error) {
	var result any

	uri := params.TextDocument.URI
	err := withSnapshot(protocol.MethodTextDocumentSemanticTokensFullDelta, uri, func(srv *server.Server, s *server.Snapshot) error {
		prev, known := srv.SemanticTokensCache().LookupResult(uri, params.PreviousResultID)

		entry, err := currentTokens(srv, s)
		if err != nil {
			return err
		}
		data := analysis.EncodeSemanticTokens(entry.Tokens)

		if known {
			if edits, ok := analysis.DiffSemanticTokens(analysis.EncodeSemanticTokens(prev.Tokens), data); ok {
				log.Debugf("Sending %d semantic token edits for %s", len(edits), uri)
				result = &protocol.SemanticTokensDelta{ResultId: &entry.ResultID, Edits: edits}
				return nil
			}
		}

		result = &protocol.SemanticTokens{ResultID: &entry.ResultID, Data: data}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// currentTokens returns the cached tokens for the snapshot's revision,
// collecting and caching them on a miss.
func currentTokens(srv *server.Server, s *server.Snapshot) (*server.CachedTokens, error) {
	cache := srv.SemanticTokensCache()
	if entry, ok := cache.Lookup(s.URI, s.Revision); ok {
		return entry, nil
	}

	tokens, err := analysis.CollectSemanticTokens(s.Root, s.Lines, srv.SemanticTokensLegend())
	if err != nil {
		return nil, err
	}
	return cache.Store(s.URI, s.Revision, tokens), nil
}
