// Package semantic provides an experimental block model of a SysY document:
// nested blocks mirror the translation unit and compound statements, the
// text between them is kept as length-only placeholders, and every block
// owns a table of the names declared directly inside it.
//
// The model is rebuilt after every parse. TextEdit can patch lengths in
// place, but nothing relies on it yet.
package semantic

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

var log = commonlog.GetLogger("sysy-lsp.semantic")

var (
	// ErrEditCrossesBlock is returned when an edit does not fit inside one
	// placeholder. The caller must rebuild the model.
	ErrEditCrossesBlock = errors.New("edit crosses a block boundary")

	// ErrEditOutOfRange is returned for edits beyond the modelled text.
	ErrEditOutOfRange = errors.New("edit out of range")
)

// Element is a Block or a Placeholder.
type Element interface {
	Len() int
	element()
}

// Placeholder stands for text between blocks. Only its length is kept.
type Placeholder struct {
	length int
}

func (p *Placeholder) Len() int { return p.length }
func (*Placeholder) element()   {}

// Block mirrors a translation unit or compound statement.
type Block struct {
	Kind string

	children []Element
	parent   *Block
	symbols  *SymbolTable

	length int
	dirty  bool
}

func (*Block) element() {}

// Len returns the byte length of the block, refreshing it if an edit below
// invalidated it.
func (b *Block) Len() int {
	if b.dirty {
		n := 0
		for _, c := range b.children {
			n += c.Len()
		}
		b.length = n
		b.dirty = false
	}
	return b.length
}

// Children returns the block's elements in text order.
func (b *Block) Children() []Element { return b.children }

// Parent returns the enclosing block, nil for the root.
func (b *Block) Parent() *Block { return b.parent }

// Symbols returns the names declared directly in b.
func (b *Block) Symbols() *SymbolTable { return b.symbols }

// Duplicate records a declaration that was ignored because its name was
// already declared in the same block.
type Duplicate struct {
	Name   string
	Offset int
}

// Model is the block tree of one document version.
type Model struct {
	root       *Block
	Duplicates []Duplicate
}

// Build constructs the model for the tree rooted at root over ls.
func Build(root *sitter.Node, ls *document.LineStore) *Model {
	m := &Model{}
	b := &builder{lines: ls, model: m}

	top := &Block{Kind: "document", symbols: NewSymbolTable()}
	start, end := int(root.StartByte()), int(root.EndByte())
	if start > 0 {
		top.children = append(top.children, &Placeholder{length: start})
	}
	unit := b.block(root, nil)
	unit.parent = top
	top.children = append(top.children, unit)
	if total := ls.Len(); total > end {
		top.children = append(top.children, &Placeholder{length: total - end})
	}
	top.length = max(ls.Len(), end)
	m.root = top

	return m
}

// Root returns the outermost block, which spans the whole document.
func (m *Model) Root() *Block { return m.root }

// Len returns the modelled text length.
func (m *Model) Len() int { return m.root.Len() }

// BlockAt returns the innermost block containing offset.
func (m *Model) BlockAt(offset int) *Block {
	b := m.root
	for {
		var next *Block
		pos := 0
		for _, c := range b.children {
			l := c.Len()
			if inner, ok := c.(*Block); ok && offset >= pos && offset < pos+l {
				next = inner
				offset -= pos
				break
			}
			pos += l
		}
		if next == nil {
			return b
		}
		b = next
	}
}

// Lookup resolves name from the block containing offset outwards.
func (m *Model) Lookup(offset int, name string) (Symbol, bool) {
	for b := m.BlockAt(offset); b != nil; b = b.parent {
		if sym, ok := b.symbols.Get(name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// TextEdit replaces oldLen bytes at startByte with newLen bytes. The edit
// must fall within a single placeholder; every enclosing block is marked
// for recomputation.
func (m *Model) TextEdit(startByte, oldLen, newLen int) error {
	if startByte < 0 || oldLen < 0 || newLen < 0 || startByte+oldLen > m.Len() {
		return fmt.Errorf("%w: [%d, %d) in %d bytes", ErrEditOutOfRange, startByte, startByte+oldLen, m.Len())
	}

	b := m.root
	offset := startByte
	for {
		var target Element
		pos := 0
		for _, c := range b.children {
			l := c.Len()
			if offset >= pos && offset+oldLen <= pos+l {
				target = c
				break
			}
			pos += l
		}

		switch t := target.(type) {
		case *Placeholder:
			t.length += newLen - oldLen
			for p := b; p != nil; p = p.parent {
				p.dirty = true
			}
			return nil
		case *Block:
			b = t
			offset -= pos
		default:
			return fmt.Errorf("%w: [%d, %d)", ErrEditCrossesBlock, startByte, startByte+oldLen)
		}
	}
}

type builder struct {
	lines *document.LineStore
	model *Model
}

// block builds the block for n, a translation unit or compound statement.
// params are declared in the block before its own contents.
func (b *builder) block(n *sitter.Node, params []Symbol) *Block {
	blk := &Block{
		Kind:    n.Type(),
		symbols: NewSymbolTable(),
		length:  int(n.EndByte() - n.StartByte()),
	}
	for _, p := range params {
		b.declare(blk, p)
	}

	bound := int(n.StartByte())
	for i := 0; i < int(n.ChildCount()); i++ {
		b.walk(blk, n.Child(i), &bound)
	}
	if rest := int(n.EndByte()) - bound; rest > 0 {
		blk.children = append(blk.children, &Placeholder{length: rest})
	}
	return blk
}

// walk visits n inside blk, collecting declarations and descending until a
// nested compound statement starts a new block.
func (b *builder) walk(blk *Block, n *sitter.Node, bound *int) {
	if syntax.IsOpaque(n) {
		return
	}

	switch n.Type() {
	case syntax.KindDeclaration, syntax.KindFunctionDefinition:
		for _, sym := range Declared(n, b.lines) {
			b.declare(blk, sym)
		}
	}

	if n.Type() == syntax.KindCompoundStatement {
		if gap := int(n.StartByte()) - *bound; gap > 0 {
			blk.children = append(blk.children, &Placeholder{length: gap})
		}
		var params []Symbol
		if parent := n.Parent(); parent != nil && parent.Type() == syntax.KindFunctionDefinition {
			params = Parameters(parent, b.lines)
		}
		inner := b.block(n, params)
		inner.parent = blk
		blk.children = append(blk.children, inner)
		*bound = int(n.EndByte())
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		b.walk(blk, n.Child(i), bound)
	}
}

func (b *builder) declare(blk *Block, sym Symbol) {
	if blk.symbols.Insert(sym) {
		return
	}
	offset := int(sym.Node.StartByte())
	log.Warningf("%s %q is already declared in this block (byte %d)", sym.Kind, sym.Name, offset)
	b.model.Duplicates = append(b.model.Duplicates, Duplicate{Name: sym.Name, Offset: offset})
}
