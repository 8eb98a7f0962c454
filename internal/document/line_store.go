// Package document provides the line-based text model of an open document.
package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/CWBudde/go-sysy-lsp/internal/treap"
)

var (
	// ErrOutOfRange indicates a row or column beyond the document extents.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidRange indicates a range whose end precedes its start.
	ErrInvalidRange = errors.New("invalid range")
)

// Point is a zero-based (row, column) position. Column counts Unicode
// scalar values, not bytes and not UTF-16 code units.
type Point struct {
	Row    int
	Column int
}

// Before reports whether p precedes q.
func (p Point) Before(q Point) bool {
	return p.Row < q.Row || (p.Row == q.Row && p.Column < q.Column)
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// LineStore holds a document as a sequence of lines. Every line keeps its
// trailing newline except the last one, which never contains a newline and
// is empty when the text ends with "\n".
//
// Line text and line byte lengths live in two trees that always have the
// same length and index-for-index correspondence.
type LineStore struct {
	text  *treap.Tree[string]
	bytes *treap.Tree[int]
}

// NewLineStore splits text into lines.
func NewLineStore(text string) *LineStore {
	ls := &LineStore{
		text:  treap.New[string](treap.Concat{}),
		bytes: treap.New[int](treap.Sum[int]{}),
	}
	for _, line := range splitLines(text) {
		ls.text.Push(line)
		ls.bytes.Push(len(line))
	}
	return ls
}

// splitLines splits after every newline. The result always has at least
// one element and its last element never contains a newline.
func splitLines(text string) []string {
	return strings.SplitAfter(text, "\n")
}

// LineCount returns the number of lines, including the trailing line.
func (ls *LineStore) LineCount() int {
	return ls.text.Len()
}

// Len returns the document length in bytes.
func (ls *LineStore) Len() int {
	return ls.bytes.Sum()
}

// Text returns the whole document.
func (ls *LineStore) Text() string {
	return ls.text.Sum()
}

// Line returns the text of row including its trailing newline, if any.
func (ls *LineStore) Line(row int) (string, error) {
	if row < 0 || row >= ls.LineCount() {
		return "", fmt.Errorf("%w: row %d (lines: %d)", ErrOutOfRange, row, ls.LineCount())
	}
	return ls.text.Get(row), nil
}

// ByteOffset converts p to an absolute byte offset.
func (ls *LineStore) ByteOffset(p Point) (int, error) {
	col, err := ls.ByteColumn(p.Row, p.Column)
	if err != nil {
		return 0, err
	}
	return ls.bytes.SumRange(0, p.Row) + col, nil
}

// ByteColumn converts a rune column on row to a byte column.
func (ls *LineStore) ByteColumn(row, column int) (int, error) {
	line, err := ls.Line(row)
	if err != nil {
		return 0, err
	}
	idx, ok := runeIndex(content(line), column)
	if !ok {
		return 0, fmt.Errorf("%w: column %d on row %d", ErrOutOfRange, column, row)
	}
	return idx, nil
}

// RuneColumn converts a byte column on row to a rune column.
func (ls *LineStore) RuneColumn(row, byteColumn int) (int, error) {
	line, err := ls.Line(row)
	if err != nil {
		return 0, err
	}
	if byteColumn < 0 || byteColumn > len(line) {
		return 0, fmt.Errorf("%w: byte column %d on row %d", ErrOutOfRange, byteColumn, row)
	}
	return utf8.RuneCountInString(line[:byteColumn]), nil
}

// TextInRange returns the text between start (inclusive) and end (exclusive).
func (ls *LineStore) TextInRange(start, end Point) (string, error) {
	if end.Before(start) {
		return "", fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
	}
	startCol, err := ls.ByteColumn(start.Row, start.Column)
	if err != nil {
		return "", err
	}
	endCol, err := ls.ByteColumn(end.Row, end.Column)
	if err != nil {
		return "", err
	}

	first := ls.text.Get(start.Row)
	if start.Row == end.Row {
		return first[startCol:endCol], nil
	}

	last := ls.text.Get(end.Row)
	var sb strings.Builder
	sb.WriteString(first[startCol:])
	sb.WriteString(ls.text.SumRange(start.Row+1, end.Row))
	sb.WriteString(last[:endCol])
	return sb.String(), nil
}

// ReadAt returns the rest of row starting at byteColumn. It returns nil past
// the end of the document.
func (ls *LineStore) ReadAt(row, byteColumn int) []byte {
	if row < 0 || row >= ls.LineCount() {
		return nil
	}
	line := ls.text.Get(row)
	if byteColumn < 0 || byteColumn >= len(line) {
		if row+1 < ls.LineCount() && byteColumn == len(line) {
			return []byte(ls.text.Get(row + 1))
		}
		return nil
	}
	return []byte(line[byteColumn:])
}

// ApplyEdit replaces the text between e.Start and e.OldEnd with newText.
// e must have been computed against the current content.
func (ls *LineStore) ApplyEdit(e Edit, newText string) error {
	if e.OldEnd.Before(e.Start) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidRange, e.Start, e.OldEnd)
	}
	startCol, err := ls.ByteColumn(e.Start.Row, e.Start.Column)
	if err != nil {
		return err
	}
	endCol, err := ls.ByteColumn(e.OldEnd.Row, e.OldEnd.Column)
	if err != nil {
		return err
	}

	prefix := ls.text.Get(e.Start.Row)[:startCol]
	suffix := ls.text.Get(e.OldEnd.Row)[endCol:]
	lines := splitLines(prefix + newText + suffix)
	if e.OldEnd.Row < ls.LineCount()-1 {
		// suffix ends with the newline of a line that is not the last one,
		// so the split produced an empty tail that belongs to the next row.
		lines = lines[:len(lines)-1]
	}

	ls.text.RemoveRange(e.Start.Row, e.OldEnd.Row+1)
	ls.bytes.RemoveRange(e.Start.Row, e.OldEnd.Row+1)
	for i, line := range lines {
		ls.text.Insert(e.Start.Row+i, line)
		ls.bytes.Insert(e.Start.Row+i, len(line))
	}
	return nil
}

// content strips the trailing newline of a line.
func content(line string) string {
	return strings.TrimSuffix(line, "\n")
}

// runeIndex returns the byte index of the n-th rune of s. n may equal the
// rune count, which addresses the end of s.
func runeIndex(s string, n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	i := 0
	for idx := range s {
		if i == n {
			return idx, true
		}
		i++
	}
	if i == n {
		return len(s), true
	}
	return 0, false
}
