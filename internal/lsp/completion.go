package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/analysis"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

// Completion handles the textDocument/completion request.
// Keywords and the symbols visible at the cursor are filtered by the
// identifier prefix before it.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	err := withSnapshot(protocol.MethodTextDocumentCompletion, params.TextDocument.URI, func(srv *server.Server, s *server.Snapshot) error {
		p, err := s.Point(params.Position)
		if err != nil {
			return fmt.Errorf("completion position: %w", err)
		}
		bp, err := s.BytePoint(params.Position)
		if err != nil {
			return fmt.Errorf("completion position: %w", err)
		}

		// No completion inside comments.
		if node := analysis.TokenAt(s.Root, bp); node != nil && node.Type() == syntax.KindComment {
			log.Debug("Completion suppressed inside comment")
			return nil
		}

		limit := srv.Config().MaxCompletionItems
		prefix := analysis.PrefixAt(s.Lines, p)
		list.Items = analysis.CompletionItems(prefix, analysis.VisibleSymbols(s.Root, bp, s.Lines), limit)
		list.IsIncomplete = limit > 0 && len(list.Items) >= limit

		log.Debugf("Completion prefix %q: %d items", prefix, len(list.Items))
		return nil
	})

	if err != nil {
		return nil, err
	}
	return list, nil
}
