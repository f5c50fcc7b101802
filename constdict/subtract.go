package constdict

import (
	"fmt"
	"sort"
)

// Subtract returns d without the given keys. Keys absent from d are
// ignored. Subtrees containing none of the keys are shared, not
// copied; subtracting nothing shares d's storage wholesale.
func (d Dict) Subtract(keys []interface{}) (Dict, error) {
	ks := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		ck, err := d.typ.key.Coerce(k)
		if err != nil {
			for _, done := range ks {
				d.typ.key.Release(done)
			}
			return Dict{}, fmt.Errorf("subtract key: %w", err)
		}
		ks = append(ks, ck)
	}
	ks, err := sortKeys(d.typ, ks)
	if err != nil {
		return Dict{}, fmt.Errorf("subtract keys: %w", err)
	}
	root, _, err := subtractLayout(d.typ, d.root, ks)
	for _, k := range ks {
		d.typ.key.Release(k)
	}
	if err != nil {
		return Dict{}, err
	}
	if root == nil {
		root = emptyLeaf()
	}
	return Dict{d.typ, root}, nil
}

// sortKeys sorts and deduplicates the coerced keys in place. It
// consumes ks: on error every key reference has been released.
func sortKeys(t *DictType, ks []interface{}) ([]interface{}, error) {
	var sortErr error
	sort.SliceStable(ks, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := t.key.Order(ks[i], ks[j])
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		for _, k := range ks {
			t.key.Release(k)
		}
		return nil, sortErr
	}
	out := ks[:0]
	for i, k := range ks {
		if len(out) > 0 {
			c, err := t.key.Order(out[len(out)-1], k)
			if err != nil {
				for _, o := range out {
					t.key.Release(o)
				}
				for _, o := range ks[i:] {
					t.key.Release(o)
				}
				return nil, err
			}
			if c == 0 {
				t.key.Release(out[len(out)-1])
				out[len(out)-1] = k
				continue
			}
		}
		out = append(out, k)
	}
	return out, nil
}

// subtractLayout removes the sorted keys ks from l. It returns the
// resulting layout, or nil when every entry was removed, along with
// the number of entries removed. When nothing is removed the result is
// l itself, shared.
func subtractLayout(t *DictType, l *layout, ks []interface{}) (*layout, int, error) {
	if l.count == 0 || len(ks) == 0 {
		return l.share(), 0, nil
	}
	if !l.tree {
		return subtractLeaf(t, l, ks)
	}
	results := make([]child, 0, len(l.children))
	total := 0
	lo := 0
	for i := range l.children {
		hi := len(ks)
		if i+1 < len(l.children) {
			var err error
			hi, err = keyLowerBound(t, ks, lo, l.children[i+1].pivot)
			if err != nil {
				releaseChildren(t, results)
				return nil, 0, err
			}
		}
		if lo == hi {
			results = append(results, child{l.children[i].pivot, l.children[i].sub.share()})
			continue
		}
		sub, removed, err := subtractLayout(t, l.children[i].sub, ks[lo:hi])
		if err != nil {
			releaseChildren(t, results)
			return nil, 0, err
		}
		total += removed
		if sub != nil {
			pivot := l.children[i].pivot
			if removed > 0 {
				pivot = minKey(sub)
			}
			results = append(results, child{pivot, sub})
		}
		lo = hi
	}
	if total == 0 {
		releaseChildren(t, results)
		return l.share(), 0, nil
	}
	switch len(results) {
	case 0:
		return nil, total, nil
	case 1:
		return results[0].sub, total, nil
	}
	out := newTree(len(results))
	out.children = append(out.children, results...)
	out.commit()
	return out, total, nil
}

func subtractLeaf(t *DictType, l *layout, ks []interface{}) (*layout, int, error) {
	removed, err := countMatches(t, l.pairs, ks)
	if err != nil {
		return nil, 0, err
	}
	if removed == 0 {
		return l.share(), 0, nil
	}
	if removed == len(l.pairs) {
		return nil, removed, nil
	}
	out := newLeaf(len(l.pairs) - removed)
	j := 0
	for i := range l.pairs {
		keep := true
		for j < len(ks) {
			c, err := t.key.Order(ks[j], l.pairs[i].key)
			if err != nil {
				out.release(t)
				return nil, 0, err
			}
			if c < 0 {
				j++
				continue
			}
			keep = c > 0
			break
		}
		if keep {
			t.key.Retain(l.pairs[i].key)
			t.value.Retain(l.pairs[i].value)
			out.pairs = append(out.pairs, l.pairs[i])
		} else {
			j++
		}
	}
	out.commit()
	return out, removed, nil
}

// countMatches reports how many of the sorted pairs' keys appear in
// the sorted key run ks.
func countMatches(t *DictType, pairs []pair, ks []interface{}) (int, error) {
	i, j, n := 0, 0, 0
	for i < len(pairs) && j < len(ks) {
		c, err := t.key.Order(pairs[i].key, ks[j])
		if err != nil {
			return 0, fmt.Errorf("key order: %w", err)
		}
		switch {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n, nil
}

// keyLowerBound returns the first index at or after lo whose key is
// not less than pivot.
func keyLowerBound(t *DictType, ks []interface{}, lo int, pivot interface{}) (int, error) {
	var err error
	i := sort.Search(len(ks)-lo, func(i int) bool {
		if err != nil {
			return true
		}
		var c int
		c, err = t.key.Order(ks[lo+i], pivot)
		return err == nil && c >= 0
	})
	if err != nil {
		return 0, fmt.Errorf("key order: %w", err)
	}
	return lo + i, nil
}

func releaseChildren(t *DictType, cs []child) {
	for i := range cs {
		cs[i].sub.release(t)
	}
}
