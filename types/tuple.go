package types

import (
	"fmt"
	"math"

	"github.com/changhiskhan/object-database/wire"
)

// Tuple is the canonical element form of TupleOf values: a fixed
// sequence of canonical member elements.
type Tuple []interface{}

// TupleOf returns the type describing ordered sequences of elem
// values. Tuples order lexicographically, member by member, with a
// strict prefix ordering first.
func TupleOf(elem Type) Type {
	return tupleType{elem: elem}
}

type tupleType struct {
	elem Type
}

func (t tupleType) Name() string { return "TupleOf(" + t.elem.Name() + ")" }

func (t tupleType) Coerce(v interface{}) (interface{}, error) {
	var src []interface{}
	switch x := v.(type) {
	case Tuple:
		src = x
	case []interface{}:
		src = x
	default:
		return nil, coerceError(t, v)
	}
	out := make(Tuple, 0, len(src))
	for i, m := range src {
		cm, err := t.elem.Coerce(m)
		if err != nil {
			for _, done := range out {
				t.elem.Release(done)
			}
			return nil, fmt.Errorf("tuple member %d: %w", i, err)
		}
		out = append(out, cm)
	}
	return out, nil
}

func (t tupleType) Order(a, b interface{}) (int, error) {
	x, y := a.(Tuple), b.(Tuple)
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		c, err := t.elem.Order(x[i], y[i])
		if err != nil {
			return 0, fmt.Errorf("tuple member %d: %w", i, err)
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(x) < len(y):
		return -1, nil
	case len(x) > len(y):
		return 1, nil
	}
	return 0, nil
}

func (t tupleType) Hash(v interface{}) uint64 {
	w := NewWordHasher()
	for _, m := range v.(Tuple) {
		w.Add(t.elem.Hash(m))
	}
	return w.Sum()
}

func (t tupleType) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	x := v.(Tuple)
	e.BeginCompound(num)
	e.WriteUvarint(1, uint64(len(x)))
	for _, m := range x {
		t.elem.EncodeTo(e, 1, m)
	}
	e.EndCompound(num)
}

func (t tupleType) DecodeFrom(d *wire.Decoder, num wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.StartGroup {
		return nil, wireTypeError(t, wt)
	}
	release := func(out Tuple) {
		for _, m := range out {
			t.elem.Release(m)
		}
	}
	count := -1
	var out Tuple
	fields := 0
	for {
		wt, done, err := d.NextField(num)
		if err != nil {
			release(out)
			return nil, fmt.Errorf("decode tuple: %w", err)
		}
		if done {
			break
		}
		if fields == 0 {
			if wt != wire.Varint {
				release(out)
				return nil, fmt.Errorf("corrupt tuple: bad member count")
			}
			n, err := d.ReadUvarint()
			if err != nil {
				release(out)
				return nil, fmt.Errorf("decode tuple count: %w", err)
			}
			if n > math.MaxInt32 {
				release(out)
				return nil, fmt.Errorf("corrupt tuple: bad member count")
			}
			count = int(n)
			hint := count
			if hint > 1024 {
				hint = 1024
			}
			out = make(Tuple, 0, hint)
			fields++
			continue
		}
		m, err := t.elem.DecodeFrom(d, 1, wt)
		if err != nil {
			release(out)
			return nil, fmt.Errorf("decode tuple member %d: %w", fields-1, err)
		}
		out = append(out, m)
		fields++
	}
	if count == -1 || fields != count+1 {
		release(out)
		return nil, fmt.Errorf("corrupt tuple: member count mismatch")
	}
	return out, nil
}

func (t tupleType) AppendRepr(dst []byte, v interface{}) []byte {
	dst = append(dst, '(')
	for i, m := range v.(Tuple) {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = t.elem.AppendRepr(dst, m)
	}
	return append(dst, ')')
}

func (t tupleType) Compatible(other Type) bool {
	o, ok := other.(tupleType)
	if !ok {
		return false
	}
	return t.elem.Compatible(o.elem)
}

func (t tupleType) Retain(v interface{}) {
	for _, m := range v.(Tuple) {
		t.elem.Retain(m)
	}
}

func (t tupleType) Release(v interface{}) {
	for _, m := range v.(Tuple) {
		t.elem.Release(m)
	}
}
