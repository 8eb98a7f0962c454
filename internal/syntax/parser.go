// Package syntax wraps the incremental tree-sitter parser used for SysY
// sources. SysY is a syntactic subset of C, so the C grammar is used.
package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
)

// ErrParseFailed is returned when the parser produces no tree.
var ErrParseFailed = errors.New("parse failed")

// Parser is a single tree-sitter parser instance. It is not safe for
// concurrent use; every document owns its own.
type Parser struct {
	p *sitter.Parser
}

// NewParser creates a parser configured for SysY.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &Parser{p: p}
}

// Parse parses src from scratch.
func (p *Parser) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	tree, err := p.p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if tree == nil {
		return nil, ErrParseFailed
	}
	return tree, nil
}

// Reparse parses the text served by read, reusing the unchanged parts of
// old. old must already have been adjusted with Edit.
func (p *Parser) Reparse(ctx context.Context, old *sitter.Tree, read sitter.ReadFunc) (*sitter.Tree, error) {
	tree, err := p.p.ParseInputCtx(ctx, old, sitter.Input{
		Read:     read,
		Encoding: sitter.InputEncodingUTF8,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if tree == nil {
		return nil, ErrParseFailed
	}
	return tree, nil
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.p.Close()
}

// EditInput converts an edit descriptor to the parser's form. Tree-sitter
// points count bytes, so the byte columns of e are used.
func EditInput(e document.Edit) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  uint32(e.StartByte),
		OldEndIndex: uint32(e.OldEndByte),
		NewEndIndex: uint32(e.NewEndByte),
		StartPoint:  bytePoint(e.Start.Row, e.StartByteCol),
		OldEndPoint: bytePoint(e.OldEnd.Row, e.OldEndByteCol),
		NewEndPoint: bytePoint(e.NewEnd.Row, e.NewEndByteCol),
	}
}

// LineReader adapts a line store to the parser's lazy input callback.
func LineReader(ls *document.LineStore) sitter.ReadFunc {
	return func(_ uint32, pos sitter.Point) []byte {
		return ls.ReadAt(int(pos.Row), int(pos.Column))
	}
}

func bytePoint(row, col int) sitter.Point {
	return sitter.Point{Row: uint32(row), Column: uint32(col)}
}
