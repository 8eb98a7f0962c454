package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
)

// RunePoint converts a parser byte point to a rune point.
func RunePoint(ls *document.LineStore, p sitter.Point) (document.Point, error) {
	col, err := ls.RuneColumn(int(p.Row), int(p.Column))
	if err != nil {
		return document.Point{}, err
	}
	return document.Point{Row: int(p.Row), Column: col}, nil
}

// Text returns the source text spanned by n, or "" when n does not match
// the contents of ls.
func Text(n *sitter.Node, ls *document.LineStore) string {
	start, err := RunePoint(ls, n.StartPoint())
	if err != nil {
		return ""
	}
	end, err := RunePoint(ls, n.EndPoint())
	if err != nil {
		return ""
	}
	text, err := ls.TextInRange(start, end)
	if err != nil {
		return ""
	}
	return text
}
