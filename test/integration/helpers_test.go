//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/lsp"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

// program is a small but complete SysY translation unit.
const program = `const int N = 8;
int buf[N];

// fills buf with squares
void fill(int n) {
  int i = 0;
  while (i < n) {
    buf[i] = i * i;
    i = i + 1;
  }
}

int sum(int n) {
  int i = 0, total = 0;
  while (i < n) {
    total = total + buf[i];
    i = i + 1;
  }
  return total;
}

int main() {
  fill(N);
  return sum(N);
}
`

func setupTestServer(t *testing.T) *server.Server {
	t.Helper()

	srv := server.New()
	lsp.SetServer(srv)
	t.Cleanup(func() {
		srv.Documents().Clear()
		lsp.SetServer(nil)
	})

	return srv
}

func openDocument(t *testing.T, uri, text string) {
	t.Helper()

	err := lsp.DidOpen(&glsp.Context{}, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "sysy",
			Version:    1,
			Text:       text,
		},
	})
	if err != nil {
		t.Fatalf("DidOpen failed: %v", err)
	}
}

func insert(t *testing.T, uri string, version int32, line, character uint32, text string) {
	t.Helper()

	pos := protocol.Position{Line: line, Character: character}
	err := lsp.DidChange(&glsp.Context{}, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: pos, End: pos},
				Text:  text,
			},
		},
	})
	if err != nil {
		t.Fatalf("DidChange failed: %v", err)
	}
}

func positionParams(uri string, line, character uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: character},
	}
}

func definitionAt(t *testing.T, uri string, line, character uint32) *protocol.Location {
	t.Helper()

	result, err := lsp.Definition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(uri, line, character),
	})
	if err != nil {
		t.Fatalf("Definition failed: %v", err)
	}
	if result == nil {
		return nil
	}

	location, ok := result.(protocol.Location)
	if !ok {
		t.Fatalf("Definition returned %T", result)
	}
	return &location
}
