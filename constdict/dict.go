package constdict

import (
	"fmt"
	"sort"

	"github.com/changhiskhan/object-database/types"
)

// Pair is one key/value input to FromPairs. Keys and values may be any
// Go values the dict's element types coerce.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// DictType describes one dict parameterization. Obtain instances with
// Make: identical parameterizations return the identical *DictType, so
// == compares parameterizations. DictType implements types.Type,
// letting dicts nest as keys or values of other containers.
type DictType struct {
	key   types.Type
	value types.Type
	name  string
}

// Name returns the canonical parameterization name, like
// "ConstDict(Int64, String)".
func (t *DictType) Name() string { return t.name }

// KeyType returns the element type of keys.
func (t *DictType) KeyType() types.Type { return t.key }

// ValueType returns the element type of values.
func (t *DictType) ValueType() types.Type { return t.value }

// Dict is an immutable mapping with entries held in ascending key
// order. Build one with a DictType; the zero Dict is not usable.
//
// A Dict value and all copies of it refer to one shared, refcounted
// layout. Use Share to take an additional reference before handing a
// copy its own lifetime, and Release to drop one. Using a Dict after
// its last Release is undefined.
type Dict struct {
	typ  *DictType
	root *layout
}

// Type returns d's DictType.
func (d Dict) Type() *DictType { return d.typ }

// Size returns the number of entries.
func (d Dict) Size() int { return d.root.count }

// Share takes an additional reference to d's storage and returns d.
func (d Dict) Share() Dict {
	d.root.share()
	return d
}

// Release drops one reference to d's storage.
func (d Dict) Release() {
	d.root.release(d.typ)
}

// Empty returns a dict with no entries. Each call returns an
// independently released value.
func (t *DictType) Empty() Dict {
	return Dict{t, emptyLeaf()}
}

// FromPairs builds a dict from pairs given in any order. A key
// occurring more than once keeps its last value.
func (t *DictType) FromPairs(ps []Pair) (Dict, error) {
	l := newLeaf(len(ps))
	for _, p := range ps {
		k, err := t.key.Coerce(p.Key)
		if err != nil {
			l.release(t)
			return Dict{}, fmt.Errorf("key: %w", err)
		}
		v, err := t.value.Coerce(p.Value)
		if err != nil {
			t.key.Release(k)
			l.release(t)
			return Dict{}, fmt.Errorf("value for key %v: %w", p.Key, err)
		}
		l.pairs = append(l.pairs, pair{k, v})
	}
	if err := sortPairs(t, l); err != nil {
		l.release(t)
		return Dict{}, err
	}
	l.commit()
	return Dict{t, l}, nil
}

// sortPairs establishes the strictly ascending key order on a freshly
// built leaf. Later duplicates overwrite earlier ones. On error the
// leaf still owns each of its elements exactly once.
func sortPairs(t *DictType, l *layout) error {
	var sortErr error
	sort.SliceStable(l.pairs, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c, err := t.key.Order(l.pairs[i].key, l.pairs[j].key)
		if err != nil {
			sortErr = err
			return false
		}
		return c < 0
	})
	if sortErr != nil {
		return fmt.Errorf("key order: %w", sortErr)
	}
	out := l.pairs[:0]
	for i := range l.pairs {
		p := l.pairs[i]
		if len(out) > 0 {
			c, err := t.key.Order(out[len(out)-1].key, p.key)
			if err != nil {
				l.pairs = append(out, l.pairs[i:]...)
				return fmt.Errorf("key order: %w", err)
			}
			if c == 0 {
				t.key.Release(out[len(out)-1].key)
				t.value.Release(out[len(out)-1].value)
				out[len(out)-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	l.pairs = out
	return nil
}

// Get returns the value stored for key and whether it is present. The
// value is borrowed from d: it is valid while d holds its reference.
func (d Dict) Get(key interface{}) (interface{}, bool, error) {
	k, err := d.typ.key.Coerce(key)
	if err != nil {
		return nil, false, err
	}
	defer d.typ.key.Release(k)
	return lookupValue(d.typ, d.root, k)
}

// Iter calls f for each entry in ascending key order until f returns
// false. Entries are borrowed from d.
func (d Dict) Iter(f func(key, value interface{}) bool) {
	cur := newCursor(d.root)
	for {
		p, ok := cur.next()
		if !ok {
			return
		}
		if !f(p.key, p.value) {
			return
		}
	}
}

// Keys returns the keys in ascending order, borrowed from d.
func (d Dict) Keys() []interface{} {
	out := make([]interface{}, 0, d.root.count)
	cur := newCursor(d.root)
	for {
		p, ok := cur.next()
		if !ok {
			return out
		}
		out = append(out, p.key)
	}
}

// AppendRepr renders d in display form, like {1: "a", 2: "b"}.
func (d Dict) AppendRepr(dst []byte) []byte {
	dst = append(dst, '{')
	first := true
	cur := newCursor(d.root)
	for {
		p, ok := cur.next()
		if !ok {
			break
		}
		if !first {
			dst = append(dst, ", "...)
		}
		first = false
		dst = d.typ.key.AppendRepr(dst, p.key)
		dst = append(dst, ": "...)
		dst = d.typ.value.AppendRepr(dst, p.value)
	}
	return append(dst, '}')
}

func (d Dict) String() string {
	return string(d.AppendRepr(nil))
}

// Coerce implements types.Type. It accepts a Dict of the same
// parameterization and returns it with an additional reference owned
// by the caller.
func (t *DictType) Coerce(v interface{}) (interface{}, error) {
	d, ok := v.(Dict)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to %s", v, t.name)
	}
	if d.typ != t {
		return nil, fmt.Errorf("cannot coerce %s to %s", d.typ.name, t.name)
	}
	d.root.share()
	return d, nil
}

// Order implements types.Type: dicts order lexicographically over
// their flattened entries, keys before values, shorter prefix first.
func (t *DictType) Order(a, b interface{}) (int, error) {
	return orderLayouts(t, a.(Dict).root, b.(Dict).root)
}

// Hash implements types.Type.
func (t *DictType) Hash(v interface{}) uint64 {
	return v.(Dict).Hash()
}

// AppendRepr implements types.Type.
func (t *DictType) AppendRepr(dst []byte, v interface{}) []byte {
	return v.(Dict).AppendRepr(dst)
}

// Retain implements types.Type.
func (t *DictType) Retain(v interface{}) {
	v.(Dict).root.share()
}

// Release implements types.Type.
func (t *DictType) Release(v interface{}) {
	d := v.(Dict)
	d.root.release(d.typ)
}
