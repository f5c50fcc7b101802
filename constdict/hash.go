package constdict

import (
	"github.com/changhiskhan/object-database/types"
)

// Hash returns the order-dependent structural hash of d: a digest of
// every entry's key and value hashes in key order. The first call
// computes and caches it in d's layout; later calls return the cached
// word. Concurrent first calls may compute it redundantly but agree on
// the result.
func (d Dict) Hash() uint64 {
	return layoutHash(d.typ, d.root)
}

func layoutHash(t *DictType, l *layout) uint64 {
	if h := l.hash.Load(); h != 0 {
		return h
	}
	w := types.NewWordHasher()
	cur := newCursor(l)
	for {
		p, ok := cur.next()
		if !ok {
			break
		}
		w.Add(t.key.Hash(p.key))
		w.Add(t.value.Hash(p.value))
	}
	h := w.Sum()
	if h == 0 {
		h = 1
	}
	l.hash.Store(h)
	return h
}
