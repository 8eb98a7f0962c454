package treap

import "strings"

// Number is the set of types Sum can add.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sum adds numbers.
type Sum[N Number] struct{}

func (Sum[N]) Identity() N { return 0 }

func (Sum[N]) Combine(a, b N) N { return a + b }

// Concat concatenates strings in order.
type Concat struct{}

func (Concat) Identity() string { return "" }

func (Concat) Combine(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	var sb strings.Builder
	sb.Grow(len(a) + len(b))
	sb.WriteString(a)
	sb.WriteString(b)
	return sb.String()
}
