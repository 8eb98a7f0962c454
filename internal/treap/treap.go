// Package treap provides a positionally indexed randomized balanced tree
// with cached range aggregates.
package treap

import (
	"fmt"
	"math/rand/v2"
)

// Monoid combines values of type V. Combine must be associative and
// Identity must be its neutral element.
type Monoid[V any] interface {
	Identity() V
	Combine(a, b V) V
}

// Tree is an ordered sequence addressed by position (rank), not by value.
// Balance comes from a random priority drawn for every inserted node.
//
// A Tree is not safe for concurrent use, including concurrent reads:
// reading an aggregate may refresh a cached value.
type Tree[V any] struct {
	root     *node[V]
	monoid   Monoid[V]
	priority func() uint64
}

type node[V any] struct {
	value    V
	priority uint64
	size     int
	left     *node[V]
	right    *node[V]

	sum   V
	dirty bool
}

// New creates an empty tree that aggregates with m.
func New[V any](m Monoid[V]) *Tree[V] {
	return &Tree[V]{
		monoid:   m,
		priority: rand.Uint64,
	}
}

// FromSlice creates a tree holding values in order.
func FromSlice[V any](m Monoid[V], values []V) *Tree[V] {
	t := New(m)
	for _, v := range values {
		t.Push(v)
	}
	return t
}

// Len returns the number of elements.
func (t *Tree[V]) Len() int {
	return t.root.len()
}

// Insert places v so that it ends up at position k.
func (t *Tree[V]) Insert(k int, v V) {
	if k < 0 || k > t.Len() {
		panic(fmt.Sprintf("treap: insert position %d out of range [0, %d]", k, t.Len()))
	}
	n := &node[V]{
		value:    v,
		priority: t.priority(),
		size:     1,
		sum:      v,
	}
	t.root = t.insert(t.root, k, n)
}

// Push appends v at the end.
func (t *Tree[V]) Push(v V) {
	t.Insert(t.Len(), v)
}

// Get returns the element at position k.
func (t *Tree[V]) Get(k int) V {
	t.checkIndex(k)
	n := t.root
	for {
		ls := n.left.len()
		switch {
		case k < ls:
			n = n.left
		case k == ls:
			return n.value
		default:
			k -= ls + 1
			n = n.right
		}
	}
}

// Replace overwrites the element at position k and invalidates the cached
// aggregates on the path from the root to it.
func (t *Tree[V]) Replace(k int, v V) {
	t.checkIndex(k)
	n := t.root
	for {
		n.dirty = true
		ls := n.left.len()
		switch {
		case k < ls:
			n = n.left
		case k == ls:
			n.value = v
			return
		default:
			k -= ls + 1
			n = n.right
		}
	}
}

// RemoveRange removes the elements at positions [start, end).
func (t *Tree[V]) RemoveRange(start, end int) {
	t.checkRange(start, end)
	t.root = t.removeRange(t.root, start, end)
}

// SumRange returns the combined aggregate of positions [start, end).
func (t *Tree[V]) SumRange(start, end int) V {
	t.checkRange(start, end)
	return t.sumRange(t.root, start, end)
}

// Sum returns the aggregate over the whole tree.
func (t *Tree[V]) Sum() V {
	return t.aggregate(t.root)
}

// Values returns the elements in order.
func (t *Tree[V]) Values() []V {
	out := make([]V, 0, t.Len())
	var walk func(n *node[V])
	walk = func(n *node[V]) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.value)
		walk(n.right)
	}
	walk(t.root)
	return out
}

func (t *Tree[V]) checkIndex(k int) {
	if k < 0 || k >= t.Len() {
		panic(fmt.Sprintf("treap: index %d out of range [0, %d)", k, t.Len()))
	}
}

func (t *Tree[V]) checkRange(start, end int) {
	if start < 0 || start > end || end > t.Len() {
		panic(fmt.Sprintf("treap: invalid range [%d, %d) for length %d", start, end, t.Len()))
	}
}

func (t *Tree[V]) insert(n *node[V], k int, nn *node[V]) *node[V] {
	if n == nil {
		return nn
	}
	ls := n.left.len()
	if k <= ls {
		n.left = t.insert(n.left, k, nn)
		if n.left.priority > n.priority {
			n = rotateRight(n)
		}
	} else {
		n.right = t.insert(n.right, k-ls-1, nn)
		if n.right.priority > n.priority {
			n = rotateLeft(n)
		}
	}
	n.touch()
	return n
}

func (t *Tree[V]) removeRange(n *node[V], start, end int) *node[V] {
	if n == nil || start >= end {
		return n
	}
	if start == 0 && end == n.size {
		return nil
	}

	ls := n.left.len()
	if start < ls {
		n.left = t.removeRange(n.left, start, min(end, ls))
	}
	if end > ls+1 {
		n.right = t.removeRange(n.right, max(start-ls-1, 0), end-ls-1)
	}

	if start <= ls && ls < end {
		return merge(n.left, n.right)
	}
	n.touch()
	return n
}

func (t *Tree[V]) sumRange(n *node[V], start, end int) V {
	if n == nil || start >= end {
		return t.monoid.Identity()
	}
	if start == 0 && end == n.size {
		return t.aggregate(n)
	}

	acc := t.monoid.Identity()
	ls := n.left.len()
	if start < ls {
		acc = t.monoid.Combine(acc, t.sumRange(n.left, start, min(end, ls)))
	}
	if start <= ls && ls < end {
		acc = t.monoid.Combine(acc, n.value)
	}
	if end > ls+1 {
		acc = t.monoid.Combine(acc, t.sumRange(n.right, max(start-ls-1, 0), end-ls-1))
	}
	return acc
}

// aggregate returns left ⊕ value ⊕ right for the subtree at n, refreshing
// the cache only when it was marked dirty.
func (t *Tree[V]) aggregate(n *node[V]) V {
	if n == nil {
		return t.monoid.Identity()
	}
	if n.dirty {
		sum := t.monoid.Combine(t.aggregate(n.left), n.value)
		n.sum = t.monoid.Combine(sum, t.aggregate(n.right))
		n.dirty = false
	}
	return n.sum
}

// merge joins two subtrees where every element of a precedes every element
// of b. The higher priority root wins.
func merge[V any](a, b *node[V]) *node[V] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.priority >= b.priority {
		a.right = merge(a.right, b)
		a.touch()
		return a
	}
	b.left = merge(a, b.left)
	b.touch()
	return b
}

func rotateRight[V any](n *node[V]) *node[V] {
	l := n.left
	n.left = l.right
	n.touch()
	l.right = n
	l.touch()
	return l
}

func rotateLeft[V any](n *node[V]) *node[V] {
	r := n.right
	n.right = r.left
	n.touch()
	r.left = n
	r.touch()
	return r
}

func (n *node[V]) len() int {
	if n == nil {
		return 0
	}
	return n.size
}

// touch refreshes the size and defers the aggregate to the next read.
func (n *node[V]) touch() {
	n.size = 1 + n.left.len() + n.right.len()
	n.dirty = true
}
