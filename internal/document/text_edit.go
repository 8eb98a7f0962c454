package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Edit describes one text replacement in the coordinates both the line store
// and the parser need. Points use rune columns; the *ByteCol fields hold the
// same columns in bytes, and the *Byte fields are absolute byte offsets.
type Edit struct {
	Start  Point
	OldEnd Point
	NewEnd Point

	StartByte  int
	OldEndByte int
	NewEndByte int

	StartByteCol  int
	OldEndByteCol int
	NewEndByteCol int
}

// NewEdit computes the descriptor for replacing [start, oldEnd) with text.
// It must be called before the store is mutated.
func NewEdit(ls *LineStore, start, oldEnd Point, text string) (Edit, error) {
	if oldEnd.Before(start) {
		return Edit{}, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, oldEnd)
	}

	startByte, err := ls.ByteOffset(start)
	if err != nil {
		return Edit{}, fmt.Errorf("invalid start position: %w", err)
	}
	oldEndByte, err := ls.ByteOffset(oldEnd)
	if err != nil {
		return Edit{}, fmt.Errorf("invalid end position: %w", err)
	}
	startByteCol, _ := ls.ByteColumn(start.Row, start.Column)
	oldEndByteCol, _ := ls.ByteColumn(oldEnd.Row, oldEnd.Column)

	e := Edit{
		Start:         start,
		OldEnd:        oldEnd,
		StartByte:     startByte,
		OldEndByte:    oldEndByte,
		NewEndByte:    startByte + len(text),
		StartByteCol:  startByteCol,
		OldEndByteCol: oldEndByteCol,
	}

	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		tail := text[i+1:]
		e.NewEnd = Point{
			Row:    start.Row + strings.Count(text, "\n"),
			Column: utf8.RuneCountInString(tail),
		}
		e.NewEndByteCol = len(tail)
	} else {
		e.NewEnd = Point{
			Row:    start.Row,
			Column: start.Column + utf8.RuneCountInString(text),
		}
		e.NewEndByteCol = startByteCol + len(text)
	}
	return e, nil
}

// UTF16ToRuneColumn converts a UTF-16 code unit offset (as used by LSP) to a
// rune column within line. An offset that splits a surrogate pair resolves to
// the following rune.
func UTF16ToRuneColumn(line string, utf16Offset int) (int, error) {
	line = content(line)
	if utf16Offset < 0 {
		return 0, fmt.Errorf("%w: negative UTF-16 offset %d", ErrOutOfRange, utf16Offset)
	}

	units := 0
	runes := 0
	for _, r := range line {
		if units >= utf16Offset {
			return runes, nil
		}
		units += utf16Width(r)
		runes++
	}
	if utf16Offset > units {
		return 0, fmt.Errorf("%w: UTF-16 offset %d exceeds line length %d", ErrOutOfRange, utf16Offset, units)
	}
	return runes, nil
}

// RuneToUTF16Column converts a rune column within line to UTF-16 code units.
func RuneToUTF16Column(line string, runeCol int) (int, error) {
	line = content(line)
	if runeCol < 0 {
		return 0, fmt.Errorf("%w: negative column %d", ErrOutOfRange, runeCol)
	}

	units := 0
	i := 0
	for _, r := range line {
		if i == runeCol {
			return units, nil
		}
		units += utf16Width(r)
		i++
	}
	if runeCol > i {
		return 0, fmt.Errorf("%w: column %d exceeds line length %d", ErrOutOfRange, runeCol, i)
	}
	return units, nil
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

// Runes outside the BMP take a surrogate pair.
func utf16Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
