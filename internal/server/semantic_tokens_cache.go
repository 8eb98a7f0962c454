package server

import (
	"strconv"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CachedTokens is the token set issued for one document revision.
type CachedTokens struct {
	ResultID string
	Revision uint64
	Tokens   []SemanticToken
}

// SemanticTokensCache keeps the latest token set per document. Requests for
// an unchanged revision are answered from it, and it is the base that
// delta requests are diffed against.
type SemanticTokensCache struct {
	mu     sync.Mutex
	latest map[protocol.DocumentUri]*CachedTokens
	issued uint64
}

// NewSemanticTokensCache creates an empty cache.
func NewSemanticTokensCache() *SemanticTokensCache {
	return &SemanticTokensCache{
		latest: make(map[protocol.DocumentUri]*CachedTokens),
	}
}

// Store replaces the entry of uri with tokens computed for revision. Every
// stored entry gets a result ID never issued before by this cache.
func (c *SemanticTokensCache) Store(uri protocol.DocumentUri, revision uint64, tokens []SemanticToken) *CachedTokens {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued++
	entry := &CachedTokens{
		ResultID: strconv.FormatUint(revision, 10) + "." + strconv.FormatUint(c.issued, 10),
		Revision: revision,
		Tokens:   tokens,
	}
	c.latest[uri] = entry
	return entry
}

// Lookup returns the entry of uri if it was computed for revision.
func (c *SemanticTokensCache) Lookup(uri protocol.DocumentUri, revision uint64) (*CachedTokens, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.latest[uri]
	if !ok || entry.Revision != revision {
		return nil, false
	}
	return entry, true
}

// LookupResult returns the entry of uri if resultID names it. Only the
// latest entry is kept, so older result IDs miss.
func (c *SemanticTokensCache) LookupResult(uri protocol.DocumentUri, resultID string) (*CachedTokens, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.latest[uri]
	if !ok || entry.ResultID != resultID {
		return nil, false
	}
	return entry, true
}

// InvalidateDocument drops the entry of uri.
func (c *SemanticTokensCache) InvalidateDocument(uri protocol.DocumentUri) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.latest, uri)
}

// Clear drops every entry.
func (c *SemanticTokensCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.latest)
}

// Size returns the number of documents with an entry.
func (c *SemanticTokensCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.latest)
}
