package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changhiskhan/object-database/constdict"
	s3persist "github.com/changhiskhan/object-database/persist/s3"
	"github.com/changhiskhan/object-database/persist/s3test"
	"github.com/changhiskhan/object-database/types"
)

var ctx = context.Background()

type countingPersist struct {
	Persist
	stores int
	loads  int
}

func (c *countingPersist) Store(ctx context.Context, name string, data []byte) error {
	c.stores++
	return c.Persist.Store(ctx, name, data)
}

func (c *countingPersist) Load(ctx context.Context, name string) ([]byte, error) {
	c.loads++
	return c.Persist.Load(ctx, name)
}

func testDict(t *testing.T, n int) constdict.Dict {
	t.Helper()
	typ := constdict.Make(types.Int64, types.String)
	ps := make([]constdict.Pair, 0, n)
	for i := 0; i < n; i++ {
		ps = append(ps, constdict.Pair{Key: int64(i), Value: "v"})
	}
	d, err := typ.FromPairs(ps)
	require.NoError(t, err)
	return d
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s, err := NewStore(Config{StoreImmutablePartsWith: NewInMemoryStore()})
	require.NoError(t, err)

	d := testDict(t, 100)
	defer d.Release()
	name, err := s.Save(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, name)

	got, err := s.Load(ctx, d.Type(), name)
	require.NoError(t, err)
	defer got.Release()
	eq, err := d.Compare(got, constdict.Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestSaveNamesAreContentDerived(t *testing.T) {
	t.Parallel()
	s, err := NewStore(Config{StoreImmutablePartsWith: NewInMemoryStore()})
	require.NoError(t, err)

	d := testDict(t, 10)
	defer d.Release()
	name1, err := s.Save(ctx, d)
	require.NoError(t, err)
	name2, err := s.Save(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, name1, name2)

	other := testDict(t, 11)
	defer other.Release()
	name3, err := s.Save(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, name1, name3)
}

func TestCacheSkipsRepeatStores(t *testing.T) {
	t.Parallel()
	counting := &countingPersist{Persist: NewInMemoryStore()}
	s, err := NewStore(Config{
		StoreImmutablePartsWith: counting,
		Cache:                   NewCache(100),
	})
	require.NoError(t, err)

	d := testDict(t, 10)
	defer d.Release()
	_, err = s.Save(ctx, d)
	require.NoError(t, err)
	_, err = s.Save(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.stores)
}

func TestCacheServesLoads(t *testing.T) {
	t.Parallel()
	counting := &countingPersist{Persist: NewInMemoryStore()}
	s, err := NewStore(Config{
		StoreImmutablePartsWith: counting,
		Cache:                   NewCache(100),
	})
	require.NoError(t, err)

	d := testDict(t, 10)
	defer d.Release()
	name, err := s.Save(ctx, d)
	require.NoError(t, err)

	got, err := s.Load(ctx, d.Type(), name)
	require.NoError(t, err)
	got.Release()
	assert.Equal(t, 0, counting.loads)
}

func TestStoresShareCache(t *testing.T) {
	t.Parallel()
	persist := NewInMemoryStore()
	cache := NewCache(100)
	s1, err := NewStore(Config{StoreImmutablePartsWith: persist, Cache: cache})
	require.NoError(t, err)
	counting := &countingPersist{Persist: persist}
	s2, err := NewStore(Config{StoreImmutablePartsWith: counting, Cache: cache})
	require.NoError(t, err)

	d := testDict(t, 10)
	defer d.Release()
	name, err := s1.Save(ctx, d)
	require.NoError(t, err)

	got, err := s2.Load(ctx, d.Type(), name)
	require.NoError(t, err)
	got.Release()
	assert.Equal(t, 0, counting.loads)
}

func TestSaveLoadOverS3(t *testing.T) {
	t.Parallel()
	client, bucketName, closer := s3test.Client()
	defer closer()

	s, err := NewStore(Config{
		StoreImmutablePartsWith: s3persist.NewPersist(client, bucketName, "snapshots/"),
	})
	require.NoError(t, err)

	d := testDict(t, 50)
	defer d.Release()
	name, err := s.Save(ctx, d)
	require.NoError(t, err)

	got, err := s.Load(ctx, d.Type(), name)
	require.NoError(t, err)
	defer got.Release()
	eq, err := d.Compare(got, constdict.Eq, false)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestLoadVerifiesContent(t *testing.T) {
	t.Parallel()
	persist := NewInMemoryStore()
	s, err := NewStore(Config{StoreImmutablePartsWith: persist})
	require.NoError(t, err)

	d := testDict(t, 10)
	defer d.Release()
	name, err := s.Save(ctx, d)
	require.NoError(t, err)

	// Corrupt the stored bytes behind the store's back.
	ims := persist.(*inMemoryStore)
	ims.l.Lock()
	ims.entries[name][3] ^= 0xff
	ims.l.Unlock()

	_, err = s.Load(ctx, d.Type(), name)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentMismatch)
}

func TestLoadRejectsUndecodableContent(t *testing.T) {
	t.Parallel()
	persist := NewInMemoryStore()
	s, err := NewStore(Config{StoreImmutablePartsWith: persist})
	require.NoError(t, err)

	// Well-named garbage passes verification but fails decoding.
	garbage := []byte{0xde, 0xad, 0xbe, 0xef}
	name := contentName(garbage)
	require.NoError(t, persist.Store(ctx, name, garbage))

	typ := constdict.Make(types.Int64, types.String)
	_, err = s.Load(ctx, typ, name)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContentMismatch)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	s, err := NewStore(Config{StoreImmutablePartsWith: NewInMemoryStore()})
	require.NoError(t, err)
	typ := constdict.Make(types.Int64, types.String)
	_, err = s.Load(ctx, typ, "never stored")
	assert.Error(t, err)
}

func TestNewStoreRequiresPersist(t *testing.T) {
	t.Parallel()
	_, err := NewStore(Config{})
	assert.Error(t, err)
}
