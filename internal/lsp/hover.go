package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/analysis"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// Hover handles the textDocument/hover request.
// It shows the declaration and signature of the identifier under the cursor.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	var hover *protocol.Hover

	err := withSnapshot(protocol.MethodTextDocumentHover, params.TextDocument.URI, func(srv *server.Server, s *server.Snapshot) error {
		p, err := s.BytePoint(params.Position)
		if err != nil {
			return fmt.Errorf("hover position: %w", err)
		}

		node := analysis.TokenAt(s.Root, p)
		def, ok := analysis.FindDefinition(node, s.Lines)
		if !ok {
			return nil
		}

		contents := protocol.MarkupContent{Kind: srv.HoverFormat()}
		if contents.Kind == protocol.MarkupKindMarkdown {
			contents.Value = analysis.HoverContent(def, s.Lines, srv.Config().HoverMaxLength)
		} else {
			contents.Value = def.Symbol.Signature()
		}

		hover = &protocol.Hover{Contents: contents}
		if rng, err := s.NodeRange(node); err == nil {
			hover.Range = &rng
		}
		return nil
	})

	return hover, err
}
