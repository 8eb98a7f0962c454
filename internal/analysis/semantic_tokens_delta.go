package analysis

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxDeltaRatio bounds the size of a delta relative to the full token data.
// Above it the full data is sent instead.
const maxDeltaRatio = 0.7

// DiffSemanticTokens compares two encoded token arrays and returns the
// edits turning prev into next. The edit list is empty when nothing
// changed. ok is false when the edits would not be smaller than sending
// next in full.
//
// Only the common prefix and suffix are trimmed, so at most one edit is
// produced. Typing touches a single region at a time, which keeps this
// close to minimal in practice.
func DiffSemanticTokens(prev, next []uint32) (edits []protocol.SemanticTokensEdit, ok bool) {
	prefix := 0
	for prefix < len(prev) && prefix < len(next) && prev[prefix] == next[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(prev)-prefix && suffix < len(next)-prefix &&
		prev[len(prev)-1-suffix] == next[len(next)-1-suffix] {
		suffix++
	}

	edits = []protocol.SemanticTokensEdit{}
	if prefix+suffix == len(prev) && prefix+suffix == len(next) {
		return edits, true
	}

	inserted := next[prefix : len(next)-suffix]
	edits = append(edits, protocol.SemanticTokensEdit{
		Start:       uint32(prefix),
		DeleteCount: uint32(len(prev) - suffix - prefix),
		Data:        inserted,
	})

	if float64(editsSize(edits)) > float64(len(next))*maxDeltaRatio {
		return nil, false
	}
	return edits, true
}

// editsSize counts the integers an edit list occupies on the wire.
func editsSize(edits []protocol.SemanticTokensEdit) int {
	size := 0
	for _, e := range edits {
		size += 2 + len(e.Data)
	}
	return size
}
