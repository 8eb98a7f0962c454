// Package analysis provides scope resolution and the positional queries
// built on it: definitions, visible symbols, hover, completion and
// semantic tokens.
package analysis

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/semantic"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

var log = commonlog.GetLogger("sysy-lsp.analysis")

// Symbol is a declared name visible at some point of a document.
type Symbol = semantic.Symbol

// Param is one function parameter.
type Param = semantic.Param

const (
	SymbolVariable = semantic.SymbolVariable
	SymbolFunction = semantic.SymbolFunction
)

// Definition is the result of resolving an identifier.
type Definition struct {
	// Node is the identifier that declares the symbol.
	Node   *sitter.Node
	Symbol Symbol
}

// jump records how the scope walk arrived at a node.
type jump int

const (
	jumpNone jump = iota
	jumpSibling
	jumpParent
)

// walkScopes visits the nodes whose declarations are visible from start:
// the previous named siblings of start and of each of its ancestors, and
// the ancestors themselves. visit returns true to stop the walk.
func walkScopes(start *sitter.Node, visit func(n *sitter.Node, via jump) bool) {
	n := start
	for {
		var via jump
		if prev := n.PrevNamedSibling(); prev != nil {
			n, via = prev, jumpSibling
		} else if parent := n.Parent(); parent != nil {
			n, via = parent, jumpParent
		} else {
			return
		}

		if syntax.IsOpaque(n) {
			continue
		}
		if visit(n, via) {
			return
		}
	}
}

// declarationsAt returns the symbols node n introduces for a walk that
// arrived via via. A function's parameters only count when the walk came
// from inside the function.
func declarationsAt(n *sitter.Node, via jump, ls *document.LineStore) []Symbol {
	switch n.Type() {
	case syntax.KindDeclaration:
		return semantic.Declared(n, ls)
	case syntax.KindFunctionDefinition:
		syms := semantic.Declared(n, ls)
		if via == jumpParent {
			syms = append(syms, semantic.Parameters(n, ls)...)
		}
		return syms
	}
	return nil
}

// TokenAt returns the smallest node containing the byte point p. No scope
// resolution is performed.
func TokenAt(root *sitter.Node, p sitter.Point) *sitter.Node {
	return syntax.DescendantAt(root, p)
}

// FindDefinition resolves the identifier node to its declaration. The
// nearest declaration along the scope walk wins.
func FindDefinition(node *sitter.Node, ls *document.LineStore) (*Definition, bool) {
	if node == nil || node.Type() != syntax.KindIdentifier {
		return nil, false
	}
	name := syntax.Text(node, ls)
	if name == "" {
		return nil, false
	}

	var def *Definition
	walkScopes(node, func(n *sitter.Node, via jump) bool {
		for _, sym := range declarationsAt(n, via, ls) {
			if sym.Name == name {
				def = &Definition{Node: sym.Node, Symbol: sym}
				return true
			}
		}
		return false
	})

	if def == nil {
		log.Debugf("No definition for %q", name)
		return nil, false
	}
	return def, true
}

// VisibleSymbols returns every symbol visible at the byte point p, nearest
// first. A name shadowed by a nearer declaration appears only once.
func VisibleSymbols(root *sitter.Node, p sitter.Point, ls *document.LineStore) []Symbol {
	if root == nil {
		return nil
	}

	var collected []Symbol
	collect := func(n *sitter.Node, via jump) bool {
		if n.Type() == syntax.KindFunctionDefinition && via == jumpParent {
			// Inside the function its parameters are nearer than its name.
			collected = append(collected, semantic.Parameters(n, ls)...)
			collected = append(collected, semantic.Declared(n, ls)...)
			return false
		}
		collected = append(collected, declarationsAt(n, via, ls)...)
		return false
	}

	start := syntax.DescendantAt(root, p)
	if start.ChildCount() > 0 {
		// p sits between the children of start, e.g. on an empty line of
		// a block. Resume from the last named child that ends before p, as
		// if it had been reached from its next sibling.
		if child := lastNamedChildBefore(start, p); child != nil {
			if !syntax.IsOpaque(child) {
				collect(child, jumpSibling)
			}
			start = child
		}
	}
	walkScopes(start, collect)

	seen := make(map[string]bool, len(collected))
	out := make([]Symbol, 0, len(collected))
	for _, sym := range collected {
		if seen[sym.Name] {
			continue
		}
		seen[sym.Name] = true
		out = append(out, sym)
	}
	return out
}

func lastNamedChildBefore(n *sitter.Node, p sitter.Point) *sitter.Node {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		end := child.EndPoint()
		if end.Row < p.Row || (end.Row == p.Row && end.Column <= p.Column) {
			return child
		}
	}
	return nil
}

// ModelAgrees reports whether the block model resolves the identifier node
// to the same declaration as def. A nil model agrees with everything. The
// model scopes by block, not by position, so a declaration later in the
// same block legitimately makes the two disagree.
func ModelAgrees(m *semantic.Model, node *sitter.Node, def *Definition, ls *document.LineStore) bool {
	if m == nil || node == nil || def == nil {
		return true
	}
	sym, ok := m.Lookup(int(node.StartByte()), syntax.Text(node, ls))
	return ok && syntax.Same(sym.Node, def.Node)
}
