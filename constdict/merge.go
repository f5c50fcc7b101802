package constdict

import (
	"fmt"
	"sort"
)

// Layout shape thresholds. A merged run up to maxLeafPairs entries
// stays a single leaf; larger runs are chunked into leaves of
// leafChunk entries grouped under tree nodes of up to fanout children.
const (
	maxLeafPairs = 32
	leafChunk    = 16
	fanout       = 16
)

// Merge returns the union of d and other. Where both hold a key,
// other's value wins. Subtrees of either side that the other does not
// touch are shared, not copied, so the result costs allocations
// proportional to the overlap and the structure depth.
func (d Dict) Merge(other Dict) (Dict, error) {
	if d.typ != other.typ {
		return Dict{}, fmt.Errorf("mismatched dict types %s and %s", d.typ.name, other.typ.name)
	}
	root, err := mergeLayouts(d.typ, d.root, other.root)
	if err != nil {
		return Dict{}, err
	}
	return Dict{d.typ, root}, nil
}

func mergeLayouts(t *DictType, a, b *layout) (*layout, error) {
	if b.count == 0 {
		return a.share(), nil
	}
	if a.count == 0 {
		return b.share(), nil
	}
	if !a.tree && !b.tree {
		run, err := mergePairRuns(t, a.pairs, b.pairs)
		if err != nil {
			return nil, err
		}
		return buildLayout(t, run), nil
	}
	// When the two sides occupy disjoint key ranges, a two-child node
	// shares both wholesale.
	c, err := t.key.Order(maxKey(a), minKey(b))
	if err != nil {
		return nil, fmt.Errorf("key order: %w", err)
	}
	if c < 0 {
		return spanNode(a, b), nil
	}
	c, err = t.key.Order(maxKey(b), minKey(a))
	if err != nil {
		return nil, fmt.Errorf("key order: %w", err)
	}
	if c < 0 {
		return spanNode(b, a), nil
	}
	if a.tree {
		return mergeTreeWithPairs(t, a, appendPairs(make([]pair, 0, b.count), b), true)
	}
	return mergeTreeWithPairs(t, b, a.pairs, false)
}

// spanNode wraps two non-overlapping layouts, lo strictly below hi, in
// a shared two-child node.
func spanNode(lo, hi *layout) *layout {
	n := newTree(2)
	n.children = append(n.children,
		child{minKey(lo), lo.share()},
		child{minKey(hi), hi.share()})
	n.commit()
	return n
}

// mergeTreeWithPairs distributes the sorted run ps across tr's
// children. Children receiving none of the run are shared untouched.
// incomingWins selects which side survives a key collision: the run,
// or tr's existing entries.
func mergeTreeWithPairs(t *DictType, tr *layout, ps []pair, incomingWins bool) (*layout, error) {
	out := newTree(len(tr.children))
	lo := 0
	for i := range tr.children {
		hi := len(ps)
		if i+1 < len(tr.children) {
			var err error
			hi, err = pairLowerBound(t, ps, lo, tr.children[i+1].pivot)
			if err != nil {
				out.release(t)
				return nil, err
			}
		}
		if lo == hi {
			out.children = append(out.children, child{tr.children[i].pivot, tr.children[i].sub.share()})
			continue
		}
		sub, err := mergeLayoutWithPairs(t, tr.children[i].sub, ps[lo:hi], incomingWins)
		if err != nil {
			out.release(t)
			return nil, err
		}
		out.children = append(out.children, child{minKey(sub), sub})
		lo = hi
	}
	out.commit()
	return out, nil
}

func mergeLayoutWithPairs(t *DictType, l *layout, ps []pair, incomingWins bool) (*layout, error) {
	if l.tree {
		return mergeTreeWithPairs(t, l, ps, incomingWins)
	}
	var run []pair
	var err error
	if incomingWins {
		run, err = mergePairRuns(t, l.pairs, ps)
	} else {
		run, err = mergePairRuns(t, ps, l.pairs)
	}
	if err != nil {
		return nil, err
	}
	return buildLayout(t, run), nil
}

// mergePairRuns merges two sorted runs into one. On a key collision
// the entry from b survives.
func mergePairRuns(t *DictType, a, b []pair) ([]pair, error) {
	out := make([]pair, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		c, err := t.key.Order(a[i].key, b[j].key)
		if err != nil {
			return nil, fmt.Errorf("key order: %w", err)
		}
		switch {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, b[j])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out, nil
}

// pairLowerBound returns the first index at or after lo whose key is
// not less than pivot.
func pairLowerBound(t *DictType, ps []pair, lo int, pivot interface{}) (int, error) {
	var err error
	i := sort.Search(len(ps)-lo, func(i int) bool {
		if err != nil {
			return true
		}
		var c int
		c, err = t.key.Order(ps[lo+i].key, pivot)
		return err == nil && c >= 0
	})
	if err != nil {
		return 0, fmt.Errorf("key order: %w", err)
	}
	return lo + i, nil
}

// buildLayout builds a layout holding the sorted run ps, retaining a
// reference to each stored element.
func buildLayout(t *DictType, ps []pair) *layout {
	if len(ps) <= maxLeafPairs {
		return buildLeaf(t, ps)
	}
	kids := make([]child, 0, (len(ps)+leafChunk-1)/leafChunk)
	for start := 0; start < len(ps); start += leafChunk {
		end := start + leafChunk
		if end > len(ps) {
			end = len(ps)
		}
		leaf := buildLeaf(t, ps[start:end])
		kids = append(kids, child{leaf.pairs[0].key, leaf})
	}
	return buildTree(kids)
}

func buildLeaf(t *DictType, ps []pair) *layout {
	l := newLeaf(len(ps))
	for _, p := range ps {
		t.key.Retain(p.key)
		t.value.Retain(p.value)
		l.pairs = append(l.pairs, p)
	}
	l.commit()
	return l
}

// buildTree groups children into nodes of at most fanout, stacking
// levels until one node spans them all.
func buildTree(kids []child) *layout {
	if len(kids) == 1 {
		return kids[0].sub
	}
	for len(kids) > fanout {
		grouped := make([]child, 0, (len(kids)+fanout-1)/fanout)
		for start := 0; start < len(kids); start += fanout {
			end := start + fanout
			if end > len(kids) {
				end = len(kids)
			}
			n := newTree(end - start)
			n.children = append(n.children, kids[start:end]...)
			n.commit()
			grouped = append(grouped, child{n.children[0].pivot, n})
		}
		kids = grouped
	}
	n := newTree(len(kids))
	n.children = append(n.children, kids...)
	n.commit()
	return n
}
