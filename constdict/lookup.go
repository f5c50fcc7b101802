package constdict

import (
	"fmt"
	"sort"
)

// leafIndex locates key within a leaf by binary search. It returns the
// index of the first entry whose key is not less than key, and whether
// that entry's key equals it.
func leafIndex(t *DictType, l *layout, key interface{}) (int, bool, error) {
	var err error
	// cmp is written only where the predicate holds; the last such
	// index is the one the search returns.
	cmp := -1
	index := sort.Search(len(l.pairs), func(i int) bool {
		if err != nil {
			return true
		}
		c, e := t.key.Order(l.pairs[i].key, key)
		if e != nil {
			err = e
			return true
		}
		if c < 0 {
			return false
		}
		cmp = c
		return true
	})
	if err != nil {
		return 0, false, fmt.Errorf("key order: %w", err)
	}
	return index, index < len(l.pairs) && cmp == 0, nil
}

// treeChild selects the child of a tree layout whose range covers key:
// the last child whose pivot is not greater than key, or the first
// child when key precedes every pivot.
func treeChild(t *DictType, l *layout, key interface{}) (int, error) {
	var err error
	i := sort.Search(len(l.children), func(i int) bool {
		if err != nil {
			return true
		}
		var c int
		c, err = t.key.Order(l.children[i].pivot, key)
		return err == nil && c > 0
	})
	if err != nil {
		return 0, fmt.Errorf("key order: %w", err)
	}
	if i > 0 {
		i--
	}
	return i, nil
}

// lookupValue finds the value stored for key under l.
func lookupValue(t *DictType, l *layout, key interface{}) (interface{}, bool, error) {
	for l.tree {
		i, err := treeChild(t, l, key)
		if err != nil {
			return nil, false, err
		}
		l = l.children[i].sub
	}
	i, found, err := leafIndex(t, l, key)
	if err != nil || !found {
		return nil, false, err
	}
	return l.pairs[i].value, true, nil
}
