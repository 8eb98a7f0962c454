package analysis

import (
	"strings"
	"unicode"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
)

// Keywords are always offered by completion.
var Keywords = []string{
	"int", "float", "void", "const", "if", "else", "while", "break", "continue", "return",
}

// PrefixAt returns the identifier characters immediately before p.
func PrefixAt(ls *document.LineStore, p document.Point) string {
	line, err := ls.Line(p.Row)
	if err != nil {
		return ""
	}
	runes := []rune(strings.TrimSuffix(line, "\n"))
	if p.Column > len(runes) {
		return ""
	}

	start := p.Column
	for start > 0 && isIdentRune(runes[start-1]) {
		start--
	}
	return string(runes[start:p.Column])
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// CompletionItems lists keywords then symbols whose names start with
// prefix, ignoring case. limit <= 0 means no limit.
func CompletionItems(prefix string, symbols []Symbol, limit int) []protocol.CompletionItem {
	lower := strings.ToLower(prefix)
	matches := func(name string) bool {
		return strings.HasPrefix(strings.ToLower(name), lower)
	}

	items := make([]protocol.CompletionItem, 0)
	add := func(item protocol.CompletionItem) bool {
		if limit > 0 && len(items) >= limit {
			return false
		}
		items = append(items, item)
		return true
	}

	for _, kw := range Keywords {
		if !matches(kw) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		if !add(protocol.CompletionItem{Label: kw, Kind: &kind}) {
			return items
		}
	}

	for _, sym := range symbols {
		if !matches(sym.Name) {
			continue
		}
		kind := protocol.CompletionItemKindVariable
		if sym.Kind == SymbolFunction {
			kind = protocol.CompletionItemKindFunction
		}
		detail := sym.Signature()
		if !add(protocol.CompletionItem{Label: sym.Name, Kind: &kind, Detail: &detail}) {
			return items
		}
	}

	return items
}
