package constdict

import (
	"errors"
	"fmt"
	"math"

	"github.com/changhiskhan/object-database/wire"
)

var (
	// ErrCorruptCount reports an encoded dict whose leading field is
	// not the entry count.
	ErrCorruptCount = errors.New("corrupt dict: bad entry count")
	// ErrFieldCountMismatch reports an encoded dict holding a
	// different number of fields than its entry count declares.
	ErrFieldCountMismatch = errors.New("corrupt dict: field count mismatch")
)

// Fields inside a compound carry no numbers of their own; everything
// is written as field 1 and read back by position.
const innerField wire.Number = 1

// Encode returns the wire form of d: a compound holding the entry
// count followed by alternating key and value fields in key order. The
// encoding depends only on d's entries, never on its internal shape.
func (d Dict) Encode() []byte {
	return d.AppendEncoded(nil)
}

// AppendEncoded appends the wire form of d to dst.
func (d Dict) AppendEncoded(dst []byte) []byte {
	e := wire.NewEncoder(dst)
	d.encodeTo(e, innerField)
	return e.Finish()
}

func (d Dict) encodeTo(e *wire.Encoder, num wire.Number) {
	e.BeginCompound(num)
	e.WriteUvarint(innerField, uint64(d.root.count))
	cur := newCursor(d.root)
	for {
		p, ok := cur.next()
		if !ok {
			break
		}
		d.typ.key.EncodeTo(e, innerField, p.key)
		d.typ.value.EncodeTo(e, innerField, p.value)
	}
	e.EndCompound(num)
}

// EncodeTo implements types.Type for dict-valued elements.
func (t *DictType) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	v.(Dict).encodeTo(e, num)
}

// Decode reads a dict from the form produced by Encode. Malformed
// input fails without yielding a partial dict: a leading field that is
// not the count fails with ErrCorruptCount, and a disagreement between
// the declared count and the fields present fails with
// ErrFieldCountMismatch. The decoded dict is always leaf form.
func (t *DictType) Decode(data []byte) (Dict, error) {
	dec := wire.NewDecoder(data)
	num, err := dec.BeginCompound()
	if err != nil {
		return Dict{}, fmt.Errorf("decode dict: %w", err)
	}
	root, err := t.decodeBody(dec, num)
	if err != nil {
		return Dict{}, err
	}
	if dec.Len() != 0 {
		n := dec.Len()
		root.release(t)
		return Dict{}, fmt.Errorf("decode dict: %d trailing bytes", n)
	}
	return Dict{t, root}, nil
}

// DecodeFrom implements types.Type for dict-valued elements.
func (t *DictType) DecodeFrom(d *wire.Decoder, num wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.StartGroup {
		return nil, fmt.Errorf("%s: unexpected wire type %d", t.name, wt)
	}
	root, err := t.decodeBody(d, num)
	if err != nil {
		return nil, err
	}
	return Dict{t, root}, nil
}

// decodeBody reads a dict compound after its start tag. Field roles
// are implied by position: the count first, then each entry's key and
// value in turn.
func (t *DictType) decodeBody(d *wire.Decoder, num wire.Number) (*layout, error) {
	count := -1
	fields := 0
	var l *layout
	var pendingKey interface{}
	haveKey := false
	fail := func(err error) (*layout, error) {
		if haveKey {
			t.key.Release(pendingKey)
		}
		if l != nil {
			l.release(t)
		}
		return nil, err
	}
	for {
		wt, done, err := d.NextField(num)
		if err != nil {
			return fail(fmt.Errorf("decode dict: %w", err))
		}
		if done {
			break
		}
		if fields == 0 {
			if wt != wire.Varint {
				return fail(ErrCorruptCount)
			}
			n, err := d.ReadUvarint()
			if err != nil {
				return fail(fmt.Errorf("decode dict count: %w", err))
			}
			if n > math.MaxInt32 {
				return fail(ErrCorruptCount)
			}
			count = int(n)
			hint := count
			if hint > 1024 {
				hint = 1024
			}
			l = newLeaf(hint)
			fields++
			continue
		}
		if fields%2 == 1 {
			k, err := t.key.DecodeFrom(d, innerField, wt)
			if err != nil {
				return fail(fmt.Errorf("decode dict key %d: %w", (fields-1)/2, err))
			}
			pendingKey, haveKey = k, true
		} else {
			v, err := t.value.DecodeFrom(d, innerField, wt)
			if err != nil {
				return fail(fmt.Errorf("decode dict value %d: %w", (fields-1)/2, err))
			}
			l.pairs = append(l.pairs, pair{pendingKey, v})
			pendingKey, haveKey = nil, false
		}
		fields++
	}
	if count == -1 || fields != 2*count+1 {
		return fail(ErrFieldCountMismatch)
	}
	if err := sortPairs(t, l); err != nil {
		return fail(fmt.Errorf("decode dict: %w", err))
	}
	l.commit()
	return l, nil
}
