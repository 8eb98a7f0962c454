package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/server"
)

func hoverAt(t *testing.T, uri string, line, character uint32) (*protocol.Hover, error) {
	t.Helper()
	return Hover(&glsp.Context{}, &protocol.HoverParams{
		TextDocumentPositionParams: positionParams(uri, line, character),
	})
}

func TestHover_Parameter(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, testSource)

	hover, err := hoverAt(t, testDocumentURI, 1, 22)
	require.NoError(t, err)
	require.NotNil(t, hover)

	contents, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, contents.Kind)
	assert.Contains(t, contents.Value, "```sysy\nint y\n```")
	assert.Contains(t, contents.Value, "*variable* `int y`")

	require.NotNil(t, hover.Range)
	assert.Equal(t, protocol.Position{Line: 1, Character: 22}, hover.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 23}, hover.Range.End)
}

func TestHover_PlainTextClient(t *testing.T) {
	srv := newTestServer(t)
	srv.SetClientCapabilities(&protocol.ClientCapabilities{
		TextDocument: &protocol.TextDocumentClientCapabilities{
			Hover: &protocol.HoverClientCapabilities{
				ContentFormat: []protocol.MarkupKind{protocol.MarkupKindPlainText},
			},
		},
	})
	openDocument(t, testDocumentURI, testSource)

	hover, err := hoverAt(t, testDocumentURI, 1, 4)
	require.NoError(t, err)
	require.NotNil(t, hover)

	contents, ok := hover.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindPlainText, contents.Kind)
	assert.Equal(t, "int f(int y)", contents.Value)
}

func TestHover_NoSymbol(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int x;\nint f() { return 42; }\n")

	tests := []struct {
		name      string
		line, col uint32
	}{
		{"keyword", 1, 11},
		{"number literal", 1, 18},
		{"punctuation", 0, 5},
	}

	for _, tt := range tests {
		hover, err := hoverAt(t, testDocumentURI, tt.line, tt.col)
		assert.NoError(t, err, tt.name)
		assert.Nil(t, hover, tt.name)
	}
}

func TestHover_Errors(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, testSource)

	_, err := hoverAt(t, "file:///missing.sy", 0, 0)
	assert.ErrorIs(t, err, server.ErrDocumentNotFound)

	_, err = hoverAt(t, testDocumentURI, 40, 0)
	assert.Error(t, err, "positions outside the document are rejected")
}

func TestDefinition(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, testSource+"int g() { return x; }\n")

	tests := []struct {
		name      string
		line, col uint32
		want      protocol.Range
	}{
		{
			name: "parameter",
			line: 1, col: 22,
			want: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 10},
				End:   protocol.Position{Line: 1, Character: 11},
			},
		},
		{
			name: "global",
			line: 2, col: 17,
			want: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 4},
				End:   protocol.Position{Line: 0, Character: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Definition(&glsp.Context{}, &protocol.DefinitionParams{
				TextDocumentPositionParams: positionParams(testDocumentURI, tt.line, tt.col),
			})
			require.NoError(t, err)

			location, ok := result.(protocol.Location)
			require.True(t, ok, "Definition returned %T", result)
			assert.Equal(t, testDocumentURI, location.URI)
			assert.Equal(t, tt.want, location.Range)
		})
	}
}

func TestDefinition_Unresolved(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int f() { return missing; }\n")

	result, err := Definition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(testDocumentURI, 0, 18),
	})
	assert.NoError(t, err)
	assert.Nil(t, result)

	_, err = Definition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams("file:///missing.sy", 0, 0),
	})
	assert.ErrorIs(t, err, server.ErrDocumentNotFound)
}

func completionAt(t *testing.T, line, character uint32) *protocol.CompletionList {
	t.Helper()

	result, err := Completion(&glsp.Context{}, &protocol.CompletionParams{
		TextDocumentPositionParams: positionParams(testDocumentURI, line, character),
	})
	require.NoError(t, err)

	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok, "Completion returned %T", result)
	return list
}

func completionLabels(list *protocol.CompletionList) []string {
	labels := make([]string, len(list.Items))
	for i, item := range list.Items {
		labels[i] = item.Label
	}
	return labels
}

func TestCompletion(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int total;\nint f(int limit) {\n  return t;\n}\n")

	list := completionAt(t, 2, 10)
	assert.Equal(t, []string{"total"}, completionLabels(list))
	assert.False(t, list.IsIncomplete)

	list = completionAt(t, 2, 9)
	assert.Contains(t, completionLabels(list), "limit")
	assert.Contains(t, completionLabels(list), "int")
}

func TestCompletion_InsideComment(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int total;\n// to\n")

	list := completionAt(t, 1, 5)
	assert.Empty(t, list.Items)
}

func TestCompletion_RespectsLimit(t *testing.T) {
	srv := newTestServer(t)
	srv.UpdateConfig(func(cfg *server.Config) {
		cfg.MaxCompletionItems = 2
	})
	openDocument(t, testDocumentURI, "int a;\n\n")

	list := completionAt(t, 1, 0)
	assert.Len(t, list.Items, 2)
	assert.True(t, list.IsIncomplete)
}

func semanticTokens(t *testing.T) *protocol.SemanticTokens {
	t.Helper()

	result, err := SemanticTokensFull(&glsp.Context{}, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, result.ResultID)
	return result
}

func TestSemanticTokensFull(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int x;\n")

	first := semanticTokens(t)
	// int: type at 0:0, x: declared variable at 0:4
	assert.Equal(t, []uint32{0, 0, 3, 6, 0, 0, 4, 1, 2, 1}, first.Data)

	second := semanticTokens(t)
	assert.Equal(t, *first.ResultID, *second.ResultID, "unchanged versions are served from the cache")

	require.NoError(t, DidChange(&glsp.Context{}, changeParams(testDocumentURI, 2, rangeChange(0, 5, 0, 5, "y"))))

	third := semanticTokens(t)
	assert.NotEqual(t, *first.ResultID, *third.ResultID)
	assert.Equal(t, []uint32{0, 0, 3, 6, 0, 0, 4, 2, 2, 1}, third.Data)
}

func TestSemanticTokensFullDelta(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int x;\nint y;\nint z;\n")

	full := semanticTokens(t)

	require.NoError(t, DidChange(&glsp.Context{}, changeParams(testDocumentURI, 2, rangeChange(2, 4, 2, 5, "zz"))))

	result, err := SemanticTokensFullDelta(&glsp.Context{}, &protocol.SemanticTokensDeltaParams{
		TextDocument:     protocol.TextDocumentIdentifier{URI: testDocumentURI},
		PreviousResultID: *full.ResultID,
	})
	require.NoError(t, err)

	delta, ok := result.(*protocol.SemanticTokensDelta)
	require.True(t, ok, "expected a delta, got %T", result)
	require.NotNil(t, delta.ResultId)
	assert.NotEqual(t, *full.ResultID, *delta.ResultId)
	require.Len(t, delta.Edits, 1)
	assert.Equal(t, []uint32{2}, delta.Edits[0].Data, "only the length of z changed")
}

func TestSemanticTokensFullDelta_UnknownPreviousResult(t *testing.T) {
	newTestServer(t)
	openDocument(t, testDocumentURI, "int x;\n")

	result, err := SemanticTokensFullDelta(&glsp.Context{}, &protocol.SemanticTokensDeltaParams{
		TextDocument:     protocol.TextDocumentIdentifier{URI: testDocumentURI},
		PreviousResultID: "stale",
	})
	require.NoError(t, err)

	full, ok := result.(*protocol.SemanticTokens)
	require.True(t, ok, "expected full tokens, got %T", result)
	assert.NotEmpty(t, full.Data)
}

func TestDefinition_ScopeWalkWinsOverBlockModel(t *testing.T) {
	newTestServer(t)
	// The block model sees the local x for the whole body; the first use
	// still names the global.
	openDocument(t, testDocumentURI, "int x;\nint g() { x = 1; int x; return x; }\n")

	result, err := Definition(&glsp.Context{}, &protocol.DefinitionParams{
		TextDocumentPositionParams: positionParams(testDocumentURI, 1, 10),
	})
	require.NoError(t, err)

	location, ok := result.(protocol.Location)
	require.True(t, ok, "Definition returned %T", result)
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, location.Range.Start)
}
