package server

import (
	"slices"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Token types of the legend.
const (
	TokenTypeKeyword  = "keyword"
	TokenTypeFunction = "function"
	TokenTypeVariable = "variable"
	TokenTypeNumber   = "number"
	TokenTypeComment  = "comment"
	TokenTypeOperator = "operator"
	TokenTypeType     = "type"
)

// Token modifiers of the legend.
const (
	TokenModifierDeclaration = "declaration"
	TokenModifierReadonly    = "readonly"
)

// SemanticToken is one classified range of a single line. Columns count
// UTF-16 code units.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	TokenType uint32 // index into the legend's token types
	Modifiers uint32 // bit i set for the legend's i-th modifier
}

// SemanticTokensLegend is the ordered list of token types and modifiers
// that encoded tokens index into.
type SemanticTokensLegend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// NewSemanticTokensLegend creates the SysY legend. Clients cache the order,
// so entries are only ever appended.
func NewSemanticTokensLegend() *SemanticTokensLegend {
	return &SemanticTokensLegend{
		TokenTypes: []string{
			TokenTypeKeyword,
			TokenTypeFunction,
			TokenTypeVariable,
			TokenTypeNumber,
			TokenTypeComment,
			TokenTypeOperator,
			TokenTypeType,
		},
		TokenModifiers: []string{
			TokenModifierDeclaration,
			TokenModifierReadonly,
		},
	}
}

func (l *SemanticTokensLegend) ToProtocolLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     l.TokenTypes,
		TokenModifiers: l.TokenModifiers,
	}
}

// GetTokenTypeIndex returns the index of tokenType, or -1.
func (l *SemanticTokensLegend) GetTokenTypeIndex(tokenType string) int {
	return slices.Index(l.TokenTypes, tokenType)
}

// GetModifierMask ORs the bits of the given modifiers. Unknown modifiers
// contribute nothing.
func (l *SemanticTokensLegend) GetModifierMask(modifiers ...string) uint32 {
	var mask uint32
	for _, m := range modifiers {
		if i := slices.Index(l.TokenModifiers, m); i >= 0 {
			mask |= 1 << i
		}
	}
	return mask
}
