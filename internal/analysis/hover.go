package analysis

import (
	"fmt"
	"strings"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

// HoverContent renders markdown for def: the declaration source, truncated
// to maxLen runes, followed by the symbol's signature. maxLen <= 0 disables
// truncation.
func HoverContent(def *Definition, ls *document.LineStore, maxLen int) string {
	var sb strings.Builder

	decl := def.Symbol.Decl
	if decl == nil {
		decl = def.Node
	}
	text := truncate(syntax.Text(decl, ls), maxLen)

	sb.WriteString("```sysy\n")
	sb.WriteString(text)
	sb.WriteString("\n```\n\n")
	fmt.Fprintf(&sb, "*%s* `%s`", def.Symbol.Kind, def.Symbol.Signature())

	return sb.String()
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
