package treap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded[V any](m Monoid[V], seed uint64) *Tree[V] {
	t := New(m)
	t.priority = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Uint64
	return t
}

func TestTree_PushRemoveSum(t *testing.T) {
	tr := FromSlice[int](Sum[int]{}, []int{1, 2, 3, 4, 5})

	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, 15, tr.SumRange(0, 5))
	assert.Equal(t, 3, tr.Get(2))
	assert.Equal(t, 9, tr.SumRange(1, 4))

	tr.Push(6)
	tr.Push(7)
	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, 11, tr.SumRange(4, 6))

	tr.RemoveRange(2, 5)
	assert.Equal(t, []int{1, 2, 6, 7}, tr.Values())
	assert.Equal(t, 9, tr.SumRange(0, 3))

	tr.RemoveRange(0, 1)
	assert.Equal(t, 13, tr.SumRange(1, 3))

	tr.RemoveRange(0, 3)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, tr.SumRange(0, 0))
}

func TestTree_InsertAndReplace(t *testing.T) {
	tr := New[int](Sum[int]{})
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, tr.Sum())

	tr.Push(10)
	tr.Insert(1, 20)
	tr.Insert(1, 15)
	assert.Equal(t, []int{10, 15, 20}, tr.Values())
	assert.Equal(t, 45, tr.SumRange(0, 3))

	tr.Replace(0, 5)
	tr.Replace(2, 25)
	assert.Equal(t, []int{5, 15, 25}, tr.Values())
	assert.Equal(t, 45, tr.SumRange(0, 3))

	tr.Push(30)
	tr.Push(35)
	tr.Push(40)
	tr.RemoveRange(2, 4)
	assert.Equal(t, []int{5, 15, 35, 40}, tr.Values())
	assert.Equal(t, 95, tr.Sum())

	tr.Insert(2, 20)
	assert.Equal(t, 115, tr.SumRange(0, 5))
	assert.Equal(t, 70, tr.SumRange(1, 4))
	assert.Equal(t, 75, tr.SumRange(3, 5))
}

func TestTree_InsertAtFront(t *testing.T) {
	tr := New[int](Sum[int]{})
	tr.Push(50)
	tr.Insert(0, 30)
	tr.Insert(0, 70)
	tr.Insert(2, 10)
	tr.Insert(1, 90)
	assert.Equal(t, []int{70, 90, 30, 10, 50}, tr.Values())
	assert.Equal(t, 130, tr.SumRange(1, 4))

	tr.RemoveRange(1, 3)
	tr.Insert(2, 20)
	tr.Push(40)
	assert.Equal(t, []int{70, 10, 20, 50, 40}, tr.Values())
	assert.Equal(t, 190, tr.Sum())
}

func TestTree_ConcatPreservesOrder(t *testing.T) {
	tr := FromSlice[string](Concat{}, []string{"Hello\n", "World\n", "This is a test\n", ""})

	assert.Equal(t, "Hello\nWorld\nThis is a test\n", tr.Sum())
	assert.Equal(t, "World\nThis is a test\n", tr.SumRange(1, 3))

	tr.Replace(1, "Universe\n")
	assert.Equal(t, "Hello\nUniverse\nThis is a test\n", tr.Sum())
	assert.Equal(t, "Universe\n", tr.SumRange(1, 2))
}

func TestTree_MatchesSliceReplay(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, 7))
		tr := newSeeded[int](Sum[int]{}, seed)
		var ref []int

		for step := 0; step < 400; step++ {
			switch op := rng.IntN(10); {
			case op < 5 || len(ref) == 0:
				k := rng.IntN(len(ref) + 1)
				v := rng.IntN(1000) - 500
				tr.Insert(k, v)
				ref = append(ref[:k], append([]int{v}, ref[k:]...)...)
			case op < 7:
				a := rng.IntN(len(ref) + 1)
				b := a + rng.IntN(len(ref)-a+1)
				tr.RemoveRange(a, b)
				ref = append(ref[:a], ref[b:]...)
			default:
				k := rng.IntN(len(ref))
				v := rng.IntN(1000)
				tr.Replace(k, v)
				ref[k] = v
			}

			require.Equal(t, len(ref), tr.Len(), "seed %d step %d", seed, step)
			if step%25 == 0 {
				checkAgainst(t, tr, ref)
			}
		}
		checkAgainst(t, tr, ref)
		checkHeap(t, tr.root)
	}
}

func checkAgainst(t *testing.T, tr *Tree[int], ref []int) {
	t.Helper()
	for k, v := range ref {
		require.Equal(t, v, tr.Get(k), "get(%d)", k)
	}
	for a := 0; a <= len(ref); a += 3 {
		for b := a; b <= len(ref); b += 5 {
			want := 0
			for _, v := range ref[a:b] {
				want += v
			}
			require.Equal(t, want, tr.SumRange(a, b), "sum_range(%d, %d)", a, b)
		}
	}
}

func checkHeap[V any](t *testing.T, n *node[V]) int {
	t.Helper()
	if n == nil {
		return 0
	}
	if n.left != nil {
		assert.GreaterOrEqual(t, n.priority, n.left.priority)
	}
	if n.right != nil {
		assert.GreaterOrEqual(t, n.priority, n.right.priority)
	}
	size := 1 + checkHeap(t, n.left) + checkHeap(t, n.right)
	assert.Equal(t, size, n.size)
	return size
}

func height[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.left), height(n.right))
}

func TestTree_StaysBalancedUnderMonotonicInserts(t *testing.T) {
	const n = 10000

	appended := newSeeded[int](Sum[int]{}, 42)
	prepended := newSeeded[int](Sum[int]{}, 43)
	for i := 0; i < n; i++ {
		appended.Push(i)
		prepended.Insert(0, i)
	}

	assert.Less(t, height(appended.root), 100)
	assert.Less(t, height(prepended.root), 100)
	assert.Equal(t, n*(n-1)/2, appended.Sum())
	assert.Equal(t, n-1, prepended.Get(0))
}

func TestTree_AggregateIsLazy(t *testing.T) {
	tr := FromSlice[int](Sum[int]{}, []int{1, 2, 3})
	assert.True(t, tr.root.dirty)

	assert.Equal(t, 6, tr.Sum())
	assert.False(t, tr.root.dirty)

	tr.Replace(1, 20)
	assert.True(t, tr.root.dirty)
	assert.Equal(t, 24, tr.Sum())
}

func TestTree_ContractViolationsPanic(t *testing.T) {
	tr := FromSlice[int](Sum[int]{}, []int{1, 2, 3})

	assert.Panics(t, func() { tr.Get(3) })
	assert.Panics(t, func() { tr.Get(-1) })
	assert.Panics(t, func() { tr.Insert(4, 0) })
	assert.Panics(t, func() { tr.Replace(3, 0) })
	assert.Panics(t, func() { tr.RemoveRange(2, 1) })
	assert.Panics(t, func() { tr.RemoveRange(0, 4) })
	assert.Panics(t, func() { tr.SumRange(1, 5) })

	assert.Equal(t, []int{1, 2, 3}, tr.Values())
}
