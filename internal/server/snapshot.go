package server

import (
	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/semantic"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

// Snapshot is a read-only view of one document version. It is the only place
// where LSP UTF-16 positions meet the rune and byte columns used internally.
type Snapshot struct {
	URI     string
	Version int32
	Root    *sitter.Node
	Lines   *document.LineStore

	// Revision identifies the content. Results computed for one revision
	// stay valid exactly as long as the document is at it.
	Revision uint64

	// Model is nil when the semantic model is disabled.
	Model *semantic.Model
}

// Point converts an LSP position to a rune point.
func (s *Snapshot) Point(pos protocol.Position) (document.Point, error) {
	return pointAt(s.Lines, pos)
}

// BytePoint converts an LSP position to the parser's byte point.
func (s *Snapshot) BytePoint(pos protocol.Position) (sitter.Point, error) {
	p, err := s.Point(pos)
	if err != nil {
		return sitter.Point{}, err
	}
	col, err := s.Lines.ByteColumn(p.Row, p.Column)
	if err != nil {
		return sitter.Point{}, err
	}
	return sitter.Point{Row: uint32(p.Row), Column: uint32(col)}, nil
}

// Position converts a rune point to an LSP position.
func (s *Snapshot) Position(p document.Point) (protocol.Position, error) {
	line, err := s.Lines.Line(p.Row)
	if err != nil {
		return protocol.Position{}, err
	}
	col, err := document.RuneToUTF16Column(line, p.Column)
	if err != nil {
		return protocol.Position{}, err
	}
	return protocol.Position{Line: protocol.UInteger(p.Row), Character: protocol.UInteger(col)}, nil
}

// NodeRange returns the LSP range covered by n.
func (s *Snapshot) NodeRange(n *sitter.Node) (protocol.Range, error) {
	start, err := syntax.RunePoint(s.Lines, n.StartPoint())
	if err != nil {
		return protocol.Range{}, err
	}
	end, err := syntax.RunePoint(s.Lines, n.EndPoint())
	if err != nil {
		return protocol.Range{}, err
	}

	var rng protocol.Range
	if rng.Start, err = s.Position(start); err != nil {
		return protocol.Range{}, err
	}
	if rng.End, err = s.Position(end); err != nil {
		return protocol.Range{}, err
	}
	return rng, nil
}

// NodeText returns the source text of n.
func (s *Snapshot) NodeText(n *sitter.Node) string {
	return syntax.Text(n, s.Lines)
}
