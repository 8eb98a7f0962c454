package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-sysy-lsp/internal/document"
	"github.com/CWBudde/go-sysy-lsp/internal/semantic"
	"github.com/CWBudde/go-sysy-lsp/internal/syntax"
)

var log = commonlog.GetLogger("sysy-lsp.server")

var (
	// ErrDocumentNotFound is returned for requests on a URI that is not open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentClosed is returned when a document is used after Close.
	ErrDocumentClosed = errors.New("document closed")

	// ErrDocumentBroken is returned after a change left the document without
	// a syntax tree matching its text. A full-document change recovers it.
	ErrDocumentBroken = errors.New("document has no valid syntax tree")
)

// Change is one content change. A nil Range replaces the whole document.
// Range positions are in UTF-16 code units.
type Change struct {
	Range *protocol.Range
	Text  string
}

// Document represents an open document. Its text and syntax tree are only
// ever observed together, under mu.
type Document struct {
	URI        string
	LanguageID string

	mu         sync.Mutex
	version    int32
	revision   uint64
	lines      *document.LineStore
	tree       *sitter.Tree
	parser     *syntax.Parser
	model      *semantic.Model
	buildModel bool
	closed     bool
	broken     error
	metrics    *Metrics
}

// OpenDocument creates a document and parses it. The document owns its
// parser until Close.
func OpenDocument(ctx context.Context, uri, languageID string, version int32, text string, cfg *Config, m *Metrics) (*Document, error) {
	d := &Document{
		URI:        uri,
		LanguageID: languageID,
		version:    version,
		lines:      document.NewLineStore(text),
		parser:     syntax.NewParser(),
		buildModel: cfg != nil && cfg.SemanticModel,
		metrics:    m,
	}

	start := time.Now()
	tree, err := d.parser.Parse(ctx, []byte(text))
	if err != nil {
		d.parser.Close()
		return nil, fmt.Errorf("opening %s: %w", uri, err)
	}
	d.metrics.Reparse(time.Since(start))
	d.install(tree)

	log.Debugf("Opened %s (version %d, %d lines)", uri, version, d.lines.LineCount())
	return d, nil
}

// Version returns the version of the last applied change.
func (d *Document) Version() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// ApplyChanges applies changes in order and records version. Each ranged
// change is validated before anything is mutated; an invalid change stops
// the batch and leaves the earlier changes applied. The version is then
// unchanged but the revision still counts the applied changes.
func (d *Document) ApplyChanges(ctx context.Context, version int32, changes []Change) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}

	for i, change := range changes {
		var err error
		if change.Range == nil {
			err = d.replaceAll(ctx, change.Text)
		} else {
			err = d.applyRanged(ctx, *change.Range, change.Text)
		}
		if err != nil {
			return fmt.Errorf("change %d of %d: %w", i+1, len(changes), err)
		}
	}

	d.version = version
	return nil
}

// replaceAll rebuilds the document from text. It also recovers a broken
// document.
func (d *Document) replaceAll(ctx context.Context, text string) error {
	d.metrics.Edit(EditFull)
	d.lines = document.NewLineStore(text)

	start := time.Now()
	tree, err := d.parser.Parse(context.WithoutCancel(ctx), []byte(text))
	d.metrics.Reparse(time.Since(start))
	if err != nil {
		d.markBroken(err)
		return fmt.Errorf("%w: %w", ErrDocumentBroken, err)
	}
	d.install(tree)
	return nil
}

// applyRanged runs one incremental edit: compute the edit descriptor on the
// old text, adjust the old tree, mutate the lines, then reparse reusing the
// adjusted tree.
func (d *Document) applyRanged(ctx context.Context, rng protocol.Range, text string) error {
	if d.broken != nil {
		return ErrDocumentBroken
	}

	start, err := pointAt(d.lines, rng.Start)
	if err != nil {
		return fmt.Errorf("invalid range start: %w", err)
	}
	end, err := pointAt(d.lines, rng.End)
	if err != nil {
		return fmt.Errorf("invalid range end: %w", err)
	}
	edit, err := document.NewEdit(d.lines, start, end, text)
	if err != nil {
		return err
	}

	d.metrics.Edit(EditIncremental)
	d.tree.Edit(syntax.EditInput(edit))
	if err := d.lines.ApplyEdit(edit, text); err != nil {
		d.markBroken(err)
		return fmt.Errorf("%w: %w", ErrDocumentBroken, err)
	}

	// Once the lines have changed the edit cannot be abandoned, so the
	// parse ignores cancellation.
	parseCtx := context.WithoutCancel(ctx)
	began := time.Now()
	tree, err := d.parser.Reparse(parseCtx, d.tree, syntax.LineReader(d.lines))
	if err != nil {
		log.Warningf("Incremental reparse of %s failed, parsing from scratch: %v", d.URI, err)
		tree, err = d.parser.Parse(parseCtx, []byte(d.lines.Text()))
	}
	d.metrics.Reparse(time.Since(began))
	if err != nil {
		d.markBroken(err)
		return fmt.Errorf("%w: %w", ErrDocumentBroken, err)
	}

	d.install(tree)
	return nil
}

// Revision counts content changes since open. Unlike the version it also
// moves when a batch fails after applying some of its changes.
func (d *Document) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revision
}

// install replaces the current tree, closing the previous one.
func (d *Document) install(tree *sitter.Tree) {
	if d.tree != nil && d.tree != tree {
		d.tree.Close()
	}
	d.revision++
	d.tree = tree
	d.broken = nil
	d.model = nil
	if d.buildModel {
		d.model = semantic.Build(tree.RootNode(), d.lines)
	}
}

func (d *Document) markBroken(err error) {
	log.Errorf("Document %s has no valid syntax tree: %v", d.URI, err)
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
	d.model = nil
	d.broken = err
	d.revision++
}

// Read runs fn against a consistent snapshot of the document. The snapshot
// must not be retained after fn returns.
func (d *Document) Read(fn func(*Snapshot) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDocumentClosed
	}
	if d.broken != nil {
		return ErrDocumentBroken
	}

	return fn(&Snapshot{
		URI:      d.URI,
		Version:  d.version,
		Revision: d.revision,
		Root:     d.tree.RootNode(),
		Lines:    d.lines,
		Model:    d.model,
	})
}

// Text returns the current document text.
func (d *Document) Text() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrDocumentClosed
	}
	return d.lines.Text(), nil
}

// Close releases the syntax tree and the parser. Later calls fail with
// ErrDocumentClosed.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
	d.parser.Close()
	d.model = nil
}

// pointAt converts an LSP position to a rune point.
func pointAt(ls *document.LineStore, pos protocol.Position) (document.Point, error) {
	row := int(pos.Line)
	line, err := ls.Line(row)
	if err != nil {
		return document.Point{}, err
	}
	col, err := document.UTF16ToRuneColumn(line, int(pos.Character))
	if err != nil {
		return document.Point{}, err
	}
	return document.Point{Row: row, Column: col}, nil
}
