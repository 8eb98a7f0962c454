package analysis

import (
	"cmp"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/server"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

var keywordTokens = map[string]bool{
	"if": true, "else": true, "while": true, "break": true,
	"continue": true, "return": true, "const": true,
}

var operatorTokens = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "=": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "!": true,
}

// CollectSemanticTokens classifies the tree in pre-order and returns the
// tokens sorted by position, in UTF-16 columns.
func CollectSemanticTokens(root *sitter.Node, ls *document.LineStore, legend *server.SemanticTokensLegend) ([]server.SemanticToken, error) {
	if root == nil || legend == nil {
		return nil, nil
	}

	collector := &tokenCollector{
		legend: legend,
		lines:  ls,
		tokens: make([]server.SemanticToken, 0),
	}
	collector.visit(root)

	slices.SortStableFunc(collector.tokens, func(a, b server.SemanticToken) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.StartChar, b.StartChar))
	})

	return collector.tokens, nil
}

// tokenCollector holds state during tree traversal.
type tokenCollector struct {
	legend *server.SemanticTokensLegend
	lines  *document.LineStore
	tokens []server.SemanticToken
}

func (tc *tokenCollector) visit(n *sitter.Node) {
	if n.IsMissing() {
		return
	}

	kind := n.Type()
	switch {
	case !n.IsNamed() && keywordTokens[kind]:
		tc.addToken(n, server.TokenTypeKeyword, 0)
	case !n.IsNamed() && operatorTokens[kind]:
		tc.addToken(n, server.TokenTypeOperator, 0)
	case kind == syntax.KindNumberLiteral:
		tc.addToken(n, server.TokenTypeNumber, 0)
	case kind == syntax.KindComment:
		tc.addToken(n, server.TokenTypeComment, 0)
	case kind == syntax.KindPrimitiveType:
		tc.addToken(n, server.TokenTypeType, 0)
	case kind == syntax.KindIdentifier:
		tc.identifier(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		tc.visit(n.Child(i))
	}
}

// identifier classifies a name as function or variable and marks the
// declaring occurrence.
func (tc *tokenCollector) identifier(n *sitter.Node) {
	tokenType := server.TokenTypeVariable
	var modifiers []string

	child := n
	parent := n.Parent()
	if parent != nil && parent.Type() == syntax.KindCallExpression &&
		syntax.Same(parent.ChildByFieldName(syntax.FieldFunction), n) {
		tokenType = server.TokenTypeFunction
	}

	// Climb the declarator chain while n is what it declares.
	for parent != nil && syntax.Same(parent.ChildByFieldName(syntax.FieldDeclarator), child) {
		switch parent.Type() {
		case syntax.KindFunctionDeclarator:
			tokenType = server.TokenTypeFunction
		case syntax.KindDeclaration, syntax.KindParameterDeclaration, syntax.KindFunctionDefinition:
			modifiers = append(modifiers, server.TokenModifierDeclaration)
			if parent.Type() == syntax.KindDeclaration && syntax.IsConst(parent) {
				modifiers = append(modifiers, server.TokenModifierReadonly)
			}
		}
		child, parent = parent, parent.Parent()
	}
	// A declaration with several declarators only exposes the first one
	// through its field, so check the remaining ones directly.
	if len(modifiers) == 0 && parent != nil && parent.Type() == syntax.KindDeclaration {
		for _, d := range syntax.Declarators(parent) {
			if syntax.Same(d, child) {
				modifiers = append(modifiers, server.TokenModifierDeclaration)
				if syntax.IsConst(parent) {
					modifiers = append(modifiers, server.TokenModifierReadonly)
				}
				break
			}
		}
	}

	tc.addToken(n, tokenType, tc.legend.GetModifierMask(modifiers...))
}

// addToken adds n as one token per line it spans.
func (tc *tokenCollector) addToken(n *sitter.Node, tokenType string, modifiers uint32) {
	typeIndex := tc.legend.GetTokenTypeIndex(tokenType)
	if typeIndex < 0 {
		log.Warningf("Unknown token type: %s", tokenType)
		return
	}

	start, err := syntax.RunePoint(tc.lines, n.StartPoint())
	if err != nil {
		return
	}
	end, err := syntax.RunePoint(tc.lines, n.EndPoint())
	if err != nil {
		return
	}

	for row := start.Row; row <= end.Row; row++ {
		line, err := tc.lines.Line(row)
		if err != nil {
			return
		}
		runes := []rune(line)
		if len(runes) > 0 && runes[len(runes)-1] == '\n' {
			runes = runes[:len(runes)-1]
		}

		from, to := 0, len(runes)
		if row == start.Row {
			from = start.Column
		}
		if row == end.Row {
			to = min(end.Column, len(runes))
		}
		if from >= to {
			continue
		}

		tc.tokens = append(tc.tokens, server.SemanticToken{
			Line:      uint32(row),
			StartChar: uint32(document.UTF16Len(string(runes[:from]))),
			Length:    uint32(document.UTF16Len(string(runes[from:to]))),
			TokenType: uint32(typeIndex),
			Modifiers: modifiers,
		})
	}
}

// EncodeSemanticTokens produces the wire form of sorted tokens: five
// integers per token, with line and start relative to the previous token.
func EncodeSemanticTokens(tokens []server.SemanticToken) []uint32 {
	data := make([]uint32, 0, 5*len(tokens))
	var line, start uint32
	for _, tok := range tokens {
		if tok.Line != line {
			start = 0
		}
		data = append(data, tok.Line-line, tok.StartChar-start, tok.Length, tok.TokenType, tok.Modifiers)
		line, start = tok.Line, tok.StartChar
	}
	return data
}
