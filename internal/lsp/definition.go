package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/analysis"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// Definition handles the textDocument/definition request.
// The result is the declaring identifier in the same document, or nil when
// the name does not resolve.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	var location *protocol.Location

	uri := params.TextDocument.URI
	err := withSnapshot(protocol.MethodTextDocumentDefinition, uri, func(_ *server.Server, s *server.Snapshot) error {
		p, err := s.BytePoint(params.Position)
		if err != nil {
			return fmt.Errorf("definition position: %w", err)
		}

		node := analysis.TokenAt(s.Root, p)
		def, ok := analysis.FindDefinition(node, s.Lines)
		if !ok {
			return nil
		}
		if !analysis.ModelAgrees(s.Model, node, def, s.Lines) {
			log.Debugf("Block model resolves %q at %d:%d differently in %s",
				def.Symbol.Name, params.Position.Line, params.Position.Character, uri)
		}

		rng, err := s.NodeRange(def.Node)
		if err != nil {
			return err
		}
		location = &protocol.Location{URI: uri, Range: rng}
		return nil
	})

	if err != nil || location == nil {
		return nil, err
	}
	return *location, nil
}
