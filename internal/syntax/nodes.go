package syntax

import sitter "github.com/smacker/go-tree-sitter"

// Node kinds of the C grammar that the analysis relies on.
const (
	KindTranslationUnit      = "translation_unit"
	KindDeclaration          = "declaration"
	KindFunctionDefinition   = "function_definition"
	KindFunctionDeclarator   = "function_declarator"
	KindParameterList        = "parameter_list"
	KindParameterDeclaration = "parameter_declaration"
	KindCompoundStatement    = "compound_statement"
	KindInitDeclarator       = "init_declarator"
	KindArrayDeclarator      = "array_declarator"
	KindPointerDeclarator    = "pointer_declarator"
	KindParenDeclarator      = "parenthesized_declarator"
	KindIdentifier           = "identifier"
	KindPrimitiveType        = "primitive_type"
	KindTypeIdentifier       = "type_identifier"
	KindTypeQualifier        = "type_qualifier"
	KindCallExpression       = "call_expression"
	KindNumberLiteral        = "number_literal"
	KindComment              = "comment"
	KindError                = "ERROR"
)

// Field names used to reach declaration parts.
const (
	FieldType       = "type"
	FieldDeclarator = "declarator"
	FieldParameters = "parameters"
	FieldBody       = "body"
	FieldFunction   = "function"
	FieldSize       = "size"
)

// IsOpaque reports whether n is an error-recovery node. Such nodes never
// declare or resolve anything.
func IsOpaque(n *sitter.Node) bool {
	return n.Type() == KindError || n.IsMissing()
}

// DeclaratorName follows the declarator chain of d down to the identifier
// it names. It returns nil when the chain passes through an opaque node.
func DeclaratorName(d *sitter.Node) *sitter.Node {
	for d != nil {
		if IsOpaque(d) {
			return nil
		}
		switch d.Type() {
		case KindIdentifier:
			return d
		case KindParenDeclarator:
			d = d.NamedChild(0)
		default:
			d = d.ChildByFieldName(FieldDeclarator)
		}
	}
	return nil
}

// Declarators returns the declarator children of a declaration, in order.
// Every declarator follows the declaration's type.
func Declarators(decl *sitter.Node) []*sitter.Node {
	typ := decl.ChildByFieldName(FieldType)
	if typ == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.StartByte() < typ.EndByte() {
			continue
		}
		switch child.Type() {
		case KindTypeQualifier, KindComment:
			continue
		}
		out = append(out, child)
	}
	return out
}

// IsConst reports whether decl carries a const qualifier.
func IsConst(decl *sitter.Node) bool {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() == KindTypeQualifier && child.ChildCount() > 0 && child.Child(0).Type() == "const" {
			return true
		}
	}
	return false
}

// Contains reports whether the byte point p lies within n. End-inclusive
// matches let a cursor right after an identifier still address it.
func Contains(n *sitter.Node, p sitter.Point, endInclusive bool) bool {
	start, end := n.StartPoint(), n.EndPoint()
	if less(p, start) {
		return false
	}
	if endInclusive {
		return !less(end, p)
	}
	return less(p, end)
}

// DescendantAt returns the smallest node of root containing p. When no
// child contains p strictly, a child ending exactly at p is preferred, so a
// cursor right after an identifier still addresses it. root is returned
// when nothing smaller matches.
func DescendantAt(root *sitter.Node, p sitter.Point) *sitter.Node {
	if root == nil {
		return nil
	}
	n := root
	for {
		next := childAt(n, p)
		if next == nil {
			return n
		}
		n = next
	}
}

func childAt(n *sitter.Node, p sitter.Point) *sitter.Node {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if child := n.Child(i); Contains(child, p, false) {
			return child
		}
	}
	for i := count - 1; i >= 0; i-- {
		child := n.Child(i)
		if child.EndPoint() == p && less(child.StartPoint(), p) {
			return child
		}
	}
	return nil
}

func less(a, b sitter.Point) bool {
	return a.Row < b.Row || (a.Row == b.Row && a.Column < b.Column)
}

// Same reports whether a and b denote the same node of one tree.
func Same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
