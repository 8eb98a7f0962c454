package server

import (
	"fmt"
	"sync"
)

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores a document, closing any document previously stored under the
// same URI.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.mu.Lock()
	old := ds.documents[uri]
	ds.documents[uri] = doc
	ds.mu.Unlock()

	if old != nil && old != doc {
		old.Close()
	}
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Lookup is Get with an error wrapping ErrDocumentNotFound.
func (ds *DocumentStore) Lookup(uri string) (*Document, error) {
	doc, ok := ds.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	return doc, nil
}

// Delete removes a document from the store and closes it. It reports
// whether the document was open.
func (ds *DocumentStore) Delete(uri string) bool {
	ds.mu.Lock()
	doc, ok := ds.documents[uri]
	delete(ds.documents, uri)
	ds.mu.Unlock()

	if ok {
		doc.Close()
	}
	return ok
}

// List returns all document URIs.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	return uris
}

// Clear closes and removes all documents.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	docs := ds.documents
	ds.documents = make(map[string]*Document)
	ds.mu.Unlock()

	for _, doc := range docs {
		doc.Close()
	}
}
