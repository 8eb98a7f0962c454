package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

// SymbolKind distinguishes variables from functions.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
)

func (k SymbolKind) String() string {
	if k == SymbolFunction {
		return "function"
	}
	return "variable"
}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Symbol is a declared name.
type Symbol struct {
	Kind SymbolKind
	Name string

	// Type is the declared type of a variable, including const and array
	// dimensions ("const int", "int[10][2]").
	Type string

	ReturnType string
	Params     []Param

	// Node is the identifier naming the symbol; Decl is the enclosing
	// declaration or function definition. Both belong to the tree the
	// symbol was read from.
	Node *sitter.Node
	Decl *sitter.Node
}

// Signature renders the symbol the way hover shows it.
func (s Symbol) Signature() string {
	if s.Kind == SymbolVariable {
		return s.Type + " " + s.Name
	}
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = strings.TrimSpace(p.Type + " " + p.Name)
	}
	return s.ReturnType + " " + s.Name + "(" + strings.Join(params, ", ") + ")"
}

// Declared returns the symbols a declaration construct introduces into its
// enclosing scope: every declarator of a declaration (prototypes become
// functions) or the name of a function definition. Parameters are not
// included; see Parameters.
func Declared(n *sitter.Node, ls *document.LineStore) []Symbol {
	switch n.Type() {
	case syntax.KindDeclaration:
		typ := n.ChildByFieldName(syntax.FieldType)
		if typ == nil {
			return nil
		}
		typeText := syntax.Text(typ, ls)
		if syntax.IsConst(n) {
			typeText = "const " + typeText
		}

		var out []Symbol
		for _, d := range syntax.Declarators(n) {
			if sym, ok := declaratorSymbol(d, typeText, n, ls); ok {
				out = append(out, sym)
			}
		}
		return out

	case syntax.KindFunctionDefinition:
		typ := n.ChildByFieldName(syntax.FieldType)
		decl := n.ChildByFieldName(syntax.FieldDeclarator)
		if typ == nil || decl == nil {
			return nil
		}
		if sym, ok := declaratorSymbol(decl, syntax.Text(typ, ls), n, ls); ok {
			return []Symbol{sym}
		}
	}
	return nil
}

// Parameters returns the named parameters of a function definition as
// variables.
func Parameters(fn *sitter.Node, ls *document.LineStore) []Symbol {
	fd := functionDeclarator(fn.ChildByFieldName(syntax.FieldDeclarator))
	if fd == nil {
		return nil
	}
	list := fd.ChildByFieldName(syntax.FieldParameters)
	if list == nil {
		return nil
	}

	var out []Symbol
	for i := 0; i < int(list.NamedChildCount()); i++ {
		pd := list.NamedChild(i)
		if pd.Type() != syntax.KindParameterDeclaration {
			continue
		}
		typ := pd.ChildByFieldName(syntax.FieldType)
		decl := pd.ChildByFieldName(syntax.FieldDeclarator)
		if typ == nil || decl == nil {
			continue
		}
		if sym, ok := declaratorSymbol(decl, syntax.Text(typ, ls), pd, ls); ok {
			out = append(out, sym)
		}
	}
	return out
}

// declaratorSymbol builds the symbol for one declarator whose base type is
// typeText.
func declaratorSymbol(d *sitter.Node, typeText string, decl *sitter.Node, ls *document.LineStore) (Symbol, bool) {
	if d.Type() == syntax.KindInitDeclarator {
		d = d.ChildByFieldName(syntax.FieldDeclarator)
		if d == nil {
			return Symbol{}, false
		}
	}
	name := syntax.DeclaratorName(d)
	if name == nil {
		return Symbol{}, false
	}
	sym := Symbol{
		Name: syntax.Text(name, ls),
		Node: name,
		Decl: decl,
	}

	if fd := functionDeclarator(d); fd != nil {
		sym.Kind = SymbolFunction
		sym.ReturnType = typeText
		sym.Params = params(fd, ls)
		return sym, true
	}

	sym.Kind = SymbolVariable
	sym.Type = typeText
	if d.Type() == syntax.KindArrayDeclarator {
		sym.Type += strings.TrimPrefix(syntax.Text(d, ls), sym.Name)
	}
	return sym, true
}

func params(fd *sitter.Node, ls *document.LineStore) []Param {
	list := fd.ChildByFieldName(syntax.FieldParameters)
	if list == nil {
		return nil
	}
	var out []Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		pd := list.NamedChild(i)
		if pd.Type() != syntax.KindParameterDeclaration {
			continue
		}
		var p Param
		if typ := pd.ChildByFieldName(syntax.FieldType); typ != nil {
			p.Type = syntax.Text(typ, ls)
		}
		if decl := pd.ChildByFieldName(syntax.FieldDeclarator); decl != nil {
			if name := syntax.DeclaratorName(decl); name != nil {
				p.Name = syntax.Text(name, ls)
				if decl.Type() == syntax.KindArrayDeclarator {
					p.Type += strings.TrimPrefix(syntax.Text(decl, ls), p.Name)
				}
			}
		}
		// "(void)" declares no parameters.
		if p.Name == "" && p.Type == "void" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// functionDeclarator unwraps parentheses and returns d when it declares a
// function.
func functionDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil && d.Type() == syntax.KindParenDeclarator {
		d = d.NamedChild(0)
	}
	if d != nil && d.Type() == syntax.KindFunctionDeclarator {
		return d
	}
	return nil
}
