package constdict

import (
	"sync/atomic"
)

// pair is one key/value entry of a leaf layout. Both elements are in
// canonical form and owned by the layout holding them.
type pair struct {
	key   interface{}
	value interface{}
}

// child is one subtree of a tree layout. pivot aliases the smallest
// key reachable in sub; the subtree keeps it alive.
type child struct {
	pivot interface{}
	sub   *layout
}

// layout is the refcounted storage node behind a Dict. A leaf holds
// entries inline in strictly ascending key order; a tree holds at
// least two subtrees whose pivots partition the key space. Layouts
// never change once built; sharing one is a refcount increment.
type layout struct {
	refs  atomic.Int64
	hash  atomic.Uint64 // 0 until computed; a computed 0 is stored as 1
	count int
	tree  bool

	pairs    []pair
	children []child
}

// layoutAllocs and layoutFrees count layout lifetimes so tests can
// verify sharing and balanced teardown.
var (
	layoutAllocs atomic.Int64
	layoutFrees  atomic.Int64
)

func newLeaf(capacity int) *layout {
	l := &layout{}
	l.refs.Store(1)
	if capacity > 0 {
		l.pairs = make([]pair, 0, capacity)
	}
	layoutAllocs.Add(1)
	return l
}

func newTree(capacity int) *layout {
	l := &layout{tree: true}
	l.refs.Store(1)
	if capacity > 0 {
		l.children = make([]child, 0, capacity)
	}
	layoutAllocs.Add(1)
	return l
}

func emptyLeaf() *layout {
	l := newLeaf(0)
	l.commit()
	return l
}

// commit records the entry count once the payload is fully written.
func (l *layout) commit() {
	if l.tree {
		n := 0
		for i := range l.children {
			n += l.children[i].sub.count
		}
		l.count = n
	} else {
		l.count = len(l.pairs)
	}
}

// share takes a reference and returns l.
func (l *layout) share() *layout {
	l.refs.Add(1)
	return l
}

// release drops a reference. The last release frees the payload,
// dropping the references held on elements and subtrees.
func (l *layout) release(t *DictType) {
	n := l.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("release of freed dict layout")
	}
	if l.tree {
		for i := range l.children {
			l.children[i].sub.release(t)
		}
	} else {
		for i := range l.pairs {
			t.key.Release(l.pairs[i].key)
			t.value.Release(l.pairs[i].value)
		}
	}
	l.pairs, l.children = nil, nil
	layoutFrees.Add(1)
}

// minKey returns the smallest key reachable under l, which must be
// non-empty.
func minKey(l *layout) interface{} {
	for l.tree {
		l = l.children[0].sub
	}
	return l.pairs[0].key
}

// maxKey returns the largest key reachable under l, which must be
// non-empty.
func maxKey(l *layout) interface{} {
	for l.tree {
		l = l.children[len(l.children)-1].sub
	}
	return l.pairs[len(l.pairs)-1].key
}

// appendPairs flattens l onto dst in key order. The appended pairs
// borrow l's elements.
func appendPairs(dst []pair, l *layout) []pair {
	if !l.tree {
		return append(dst, l.pairs...)
	}
	for i := range l.children {
		dst = appendPairs(dst, l.children[i].sub)
	}
	return dst
}

// validate panics unless l satisfies the structural invariants:
// committed counts, strictly ascending keys, pivots matching subtree
// minimums and non-degenerate tree nodes.
func (l *layout) validate(t *DictType) {
	if !l.tree {
		if l.count != len(l.pairs) {
			panic("leaf count not committed")
		}
		for i := 1; i < len(l.pairs); i++ {
			c, err := t.key.Order(l.pairs[i-1].key, l.pairs[i].key)
			if err != nil || c >= 0 {
				panic("leaf keys out of order")
			}
		}
		return
	}
	if len(l.children) < 2 {
		panic("tree layout with fewer than two children")
	}
	n := 0
	for i := range l.children {
		c := l.children[i]
		if c.sub.count == 0 {
			panic("empty subtree")
		}
		if cmp, err := t.key.Order(c.pivot, minKey(c.sub)); err != nil || cmp != 0 {
			panic("pivot does not match subtree minimum")
		}
		if i > 0 {
			if cmp, err := t.key.Order(maxKey(l.children[i-1].sub), c.pivot); err != nil || cmp >= 0 {
				panic("subtree ranges out of order")
			}
		}
		c.sub.validate(t)
		n += c.sub.count
	}
	if n != l.count {
		panic("tree count not committed")
	}
}
