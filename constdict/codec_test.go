package constdict

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changhiskhan/object-database/types"
	"github.com/changhiskhan/object-database/wire"
)

func TestEncodeKnownBytes(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer d.Release()
	assert.Equal(t,
		[]byte{0x0b, 0x08, 0x01, 0x08, 0x02, 0x0a, 0x01, 0x61, 0x0c},
		d.Encode())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, pairsRange(0, 20, 1))
	defer d.Release()

	got, err := typ.Decode(d.Encode())
	require.NoError(t, err)
	defer got.Release()
	eq, err := d.Compare(got, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
	got.root.validate(typ)
}

func TestEncodeShapeIndependent(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	leaf := mustDict(t, typ, pairsRange(0, 100, 1))
	defer leaf.Release()
	tree := treeDict(t, typ, 0, 100)
	defer tree.Release()
	assert.Equal(t, leaf.Encode(), tree.Encode())
}

func TestDecodeYieldsLeafForm(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	tree := treeDict(t, typ, 0, 100)
	defer tree.Release()
	got, err := typ.Decode(tree.Encode())
	require.NoError(t, err)
	defer got.Release()
	assert.False(t, got.root.tree)
	assert.Equal(t, 100, got.Size())
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := typ.Empty()
	defer d.Release()
	enc := d.Encode()
	assert.Equal(t, []byte{0x0b, 0x08, 0x00, 0x0c}, enc)
	got, err := typ.Decode(enc)
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, 0, got.Size())
}

func TestAppendEncoded(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer d.Release()
	got := d.AppendEncoded([]byte{0xff})
	assert.Equal(t, byte(0xff), got[0])
	assert.Equal(t, d.Encode(), got[1:])
}

func TestDecodeRoundTripsEveryElementType(t *testing.T) {
	t.Parallel()
	for _, typ := range []*DictType{
		Make(types.Bool, types.Bool),
		Make(types.Int64, types.Float64),
		Make(types.UInt64, types.Bytes),
		Make(types.String, types.Int64),
		Make(types.TupleOf(types.Int64), types.String),
	} {
		var ps []Pair
		switch typ.KeyType() {
		case types.Bool:
			ps = []Pair{{false, true}, {true, false}}
		case types.Int64:
			ps = []Pair{{int64(-3), 1.5}, {int64(9), -2.25}}
		case types.UInt64:
			ps = []Pair{{uint64(3), []byte{1, 2}}, {uint64(9), []byte{}}}
		case types.String:
			ps = []Pair{{"x", int64(-1)}, {"y", int64(1)}}
		default:
			ps = []Pair{
				{[]interface{}{1}, "one"},
				{[]interface{}{1, 2}, "twelve"},
			}
		}
		d, err := typ.FromPairs(ps)
		require.NoError(t, err, typ.Name())
		got, err := typ.Decode(d.Encode())
		require.NoError(t, err, typ.Name())
		eq, err := d.Compare(got, Eq, false)
		require.NoError(t, err, typ.Name())
		assert.True(t, eq, typ.Name())
		got.Release()
		d.Release()
	}
}

func TestNestedDictRoundTrip(t *testing.T) {
	t.Parallel()
	inner := Make(types.Int64, types.String)
	outer := Make(types.Int64, inner)

	innerA := mustDict(t, inner, pairsRange(0, 5, 1))
	innerB := mustDict(t, inner, pairsRange(5, 10, 1))
	d, err := outer.FromPairs([]Pair{{int64(1), innerA}, {int64(2), innerB}})
	require.NoError(t, err)
	innerA.Release()
	innerB.Release()
	defer d.Release()

	got, err := outer.Decode(d.Encode())
	require.NoError(t, err)
	defer got.Release()
	eq, err := d.Compare(got, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
	assert.Equal(t, d.String(), got.String())
}

func TestDecodeResortsEntries(t *testing.T) {
	t.Parallel()
	typ := intStrType()

	// Entries arriving out of key order still decode, sorted.
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 2)
	e.WriteVarint(1, 2)
	e.WriteString(1, "b")
	e.WriteVarint(1, 1)
	e.WriteString(1, "a")
	e.EndCompound(1)
	got, err := typ.Decode(e.Finish())
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, `{1: "a", 2: "b"}`, got.String())
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 2)
	e.WriteVarint(1, 1)
	e.WriteString(1, "first")
	e.WriteVarint(1, 1)
	e.WriteString(1, "second")
	e.EndCompound(1)
	got, err := typ.Decode(e.Finish())
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, `{1: "second"}`, got.String())
}

func TestDecodeCorruptCount(t *testing.T) {
	t.Parallel()
	typ := intStrType()

	// First field is not a varint.
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteString(1, "a")
	e.EndCompound(1)
	_, err := typ.Decode(e.Finish())
	assert.True(t, errors.Is(err, ErrCorruptCount), "got %v", err)

	// Count too large to be an entry count.
	e = wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 1<<33)
	e.EndCompound(1)
	_, err = typ.Decode(e.Finish())
	assert.True(t, errors.Is(err, ErrCorruptCount), "got %v", err)
}

func TestDecodeFieldCountMismatch(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer d.Release()
	enc := d.Encode()

	// Bump the declared count: one entry follows, two declared.
	tampered := append([]byte(nil), enc...)
	require.Equal(t, byte(0x01), tampered[2])
	tampered[2] = 0x02
	_, err := typ.Decode(tampered)
	assert.True(t, errors.Is(err, ErrFieldCountMismatch), "got %v", err)

	// No count at all.
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.EndCompound(1)
	_, err = typ.Decode(e.Finish())
	assert.True(t, errors.Is(err, ErrFieldCountMismatch), "got %v", err)

	// A key with no value.
	e = wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 1)
	e.WriteVarint(1, 1)
	e.EndCompound(1)
	_, err = typ.Decode(e.Finish())
	assert.True(t, errors.Is(err, ErrFieldCountMismatch), "got %v", err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer d.Release()
	enc := append(d.Encode(), 0x00)
	_, err := typ.Decode(enc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing")
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	d := mustDict(t, typ, pairsRange(0, 3, 1))
	defer d.Release()
	enc := d.Encode()
	for i := 0; i < len(enc); i++ {
		_, err := typ.Decode(enc[:i])
		assert.Error(t, err, "prefix of %d bytes decoded", i)
	}
}

func TestDecodeRejectsWrongElementWireType(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 1)
	e.WriteString(1, "key should be a varint")
	e.WriteString(1, "a")
	e.EndCompound(1)
	_, err := typ.Decode(e.Finish())
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptElementCount(t *testing.T) {
	t.Parallel()
	typ := Make(types.TupleOf(types.Int64), types.String)
	e := wire.NewEncoder(nil)
	e.BeginCompound(1)
	e.WriteUvarint(1, 1)
	e.BeginCompound(1)
	e.WriteUvarint(1, math.MaxUint64)
	e.EndCompound(1)
	e.WriteString(1, "a")
	e.EndCompound(1)
	_, err := typ.Decode(e.Finish())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt tuple")
}
