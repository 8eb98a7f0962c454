package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv := notificationServer(context)
	if srv == nil {
		return nil
	}

	item := params.TextDocument
	doc, err := server.OpenDocument(requestContext(), item.URI, item.LanguageID, item.Version, item.Text, srv.Config(), srv.Metrics())
	if err != nil {
		log.Errorf("Error opening document %s: %s", item.URI, err)
		return err
	}

	if _, reopened := srv.Documents().Get(item.URI); !reopened {
		srv.Metrics().DocumentOpened()
	}
	srv.Documents().Set(item.URI, doc)
	srv.SemanticTokensCache().InvalidateDocument(item.URI)

	log.Infof("Document opened: %s (version %d, language %s, %d bytes)",
		item.URI, item.Version, item.LanguageID, len(item.Text))
	return nil
}

// DidChange handles the textDocument/didChange notification.
// Ranged changes are applied incrementally; a change without a range
// replaces the whole text.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv := notificationServer(context)
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Warningf("Document not found for didChange: %s", uri)
		return nil
	}

	changes, err := toChanges(params.ContentChanges)
	if err != nil {
		log.Warningf("Ignoring didChange for %s: %s", uri, err)
		return err
	}

	if err := doc.ApplyChanges(requestContext(), params.TextDocument.Version, changes); err != nil {
		// Part of the batch may have been applied.
		srv.SemanticTokensCache().InvalidateDocument(uri)
		log.Errorf("Error applying changes to %s: %s", uri, err)
		return err
	}

	log.Debugf("Document changed: %s (version %d, %d changes)", uri, params.TextDocument.Version, len(changes))
	return nil
}

// toChanges converts the content change events glsp decoded.
func toChanges(contentChanges []any) ([]server.Change, error) {
	changes := make([]server.Change, 0, len(contentChanges))

	for i, c := range contentChanges {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, server.Change{Range: change.Range, Text: change.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, server.Change{Text: change.Text})
		default:
			return nil, fmt.Errorf("content change %d has unexpected type %T", i, c)
		}
	}

	return changes, nil
}

// DidClose handles the textDocument/didClose notification.
// This is sent when a document is closed in the editor.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv := notificationServer(context)
	if srv == nil {
		return nil
	}

	uri := params.TextDocument.URI
	if srv.Documents().Delete(uri) {
		srv.Metrics().DocumentClosed()
	}
	srv.SemanticTokensCache().InvalidateDocument(uri)

	log.Infof("Document closed: %s", uri)
	return nil
}
