package constdict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changhiskhan/object-database/types"
)

var allOps = []Op{Eq, Ne, Lt, LtE, Gt, GtE}

func TestOpString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "==", Eq.String())
	assert.Equal(t, "!=", Ne.String())
	assert.Equal(t, "<", Lt.String())
	assert.Equal(t, "<=", LtE.String())
	assert.Equal(t, ">", Gt.String())
	assert.Equal(t, ">=", GtE.String())
}

func compareAll(t *testing.T, a, b Dict, expected map[Op]bool) {
	t.Helper()
	for _, op := range allOps {
		got, err := a.Compare(b, op, false)
		require.NoError(t, err, "op %s", op)
		assert.Equal(t, expected[op], got, "op %s", op)
	}
}

func TestCompareOrdersByFirstDifference(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	a := mustDict(t, typ, []Pair{{int64(1), "a"}, {int64(2), "b"}})
	defer a.Release()
	b := mustDict(t, typ, []Pair{{int64(1), "a"}, {int64(2), "c"}})
	defer b.Release()

	compareAll(t, a, b, map[Op]bool{Eq: false, Ne: true, Lt: true, LtE: true, Gt: false, GtE: false})
	compareAll(t, b, a, map[Op]bool{Eq: false, Ne: true, Lt: false, LtE: false, Gt: true, GtE: true})

	same := mustDict(t, typ, []Pair{{int64(1), "a"}, {int64(2), "b"}})
	defer same.Release()
	compareAll(t, a, same, map[Op]bool{Eq: true, Ne: false, Lt: false, LtE: true, Gt: false, GtE: true})
}

func TestCompareKeyDecidesBeforeValue(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	a := mustDict(t, typ, []Pair{{int64(1), "z"}})
	defer a.Release()
	b := mustDict(t, typ, []Pair{{int64(2), "a"}})
	defer b.Release()
	lt, err := a.Compare(b, Lt, false)
	require.NoError(t, err)
	assert.True(t, lt)
}

func TestComparePrefixOrdersFirst(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	short := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer short.Release()
	long := mustDict(t, typ, []Pair{{int64(1), "a"}, {int64(2), "b"}})
	defer long.Release()

	compareAll(t, short, long, map[Op]bool{Eq: false, Ne: true, Lt: true, LtE: true, Gt: false, GtE: false})
	compareAll(t, long, short, map[Op]bool{Eq: false, Ne: true, Lt: false, LtE: false, Gt: true, GtE: true})
}

func TestCompareEmptyOrdersFirst(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	empty := typ.Empty()
	defer empty.Release()
	one := mustDict(t, typ, []Pair{{int64(1), "a"}})
	defer one.Release()

	lt, err := empty.Compare(one, Lt, false)
	require.NoError(t, err)
	assert.True(t, lt)

	empty2 := typ.Empty()
	defer empty2.Release()
	eq, err := empty.Compare(empty2, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCompareShapeIndependent(t *testing.T) {
	t.Parallel()
	typ := intStrType()
	leaf := mustDict(t, typ, pairsRange(0, 100, 1))
	defer leaf.Release()
	tree := treeDict(t, typ, 0, 100)
	defer tree.Release()
	eq, err := leaf.Compare(tree, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCompareCountFastPathSkipsUnorderableValues(t *testing.T) {
	t.Parallel()
	typ := Make(types.Int64, types.Float64)
	a := mustDict(t, typ, []Pair{{int64(1), math.NaN()}})
	defer a.Release()
	b := mustDict(t, typ, []Pair{{int64(1), math.NaN()}, {int64(2), 2.0}})
	defer b.Release()

	// Different entry counts decide equality without ordering any
	// element, so the NaN values never get compared.
	eq, err := a.Compare(b, Eq, false)
	require.NoError(t, err)
	assert.False(t, eq)
	ne, err := a.Compare(b, Ne, false)
	require.NoError(t, err)
	assert.True(t, ne)

	// The ordering operators still have to walk the entries.
	_, err = a.Compare(b, Lt, false)
	assert.Error(t, err)
}

func TestCompareFailurePropagates(t *testing.T) {
	t.Parallel()
	typ := Make(types.Int64, types.Float64)
	a := mustDict(t, typ, []Pair{{int64(1), math.NaN()}})
	defer a.Release()
	b := mustDict(t, typ, []Pair{{int64(1), 2.0}})
	defer b.Release()

	for _, op := range allOps {
		_, err := a.Compare(b, op, false)
		assert.Error(t, err, "op %s", op)
	}
}

func TestCompareSuppressesFailures(t *testing.T) {
	t.Parallel()
	typ := Make(types.Int64, types.Float64)
	a := mustDict(t, typ, []Pair{{int64(1), math.NaN()}})
	defer a.Release()
	b := mustDict(t, typ, []Pair{{int64(1), 2.0}})
	defer b.Release()

	expected := map[Op]bool{Eq: false, Ne: true, Lt: false, LtE: false, Gt: false, GtE: false}
	for _, op := range allOps {
		got, err := a.Compare(b, op, true)
		require.NoError(t, err, "op %s", op)
		assert.Equal(t, expected[op], got, "op %s", op)
	}
}

func TestCompareSelfSharedStorage(t *testing.T) {
	t.Parallel()
	typ := Make(types.Int64, types.Float64)
	d := mustDict(t, typ, []Pair{{int64(1), math.NaN()}})
	defer d.Release()

	// Shared storage is equal by identity, with no element ordering.
	eq, err := d.Compare(d, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
	shared := d.Share()
	defer shared.Release()
	eq, err = d.Compare(shared, Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCompareMismatchedTypes(t *testing.T) {
	t.Parallel()
	a := intStrType().Empty()
	defer a.Release()
	b := Make(types.String, types.String).Empty()
	defer b.Release()
	_, err := a.Compare(b, Eq, false)
	assert.Error(t, err)
}
