package snapshot

import lru "github.com/hashicorp/golang-lru"

// Cache caches immutable blobs by name. It is also used to avoid
// re-storing blobs, so care should be taken to switch/invalidate the
// Cache when the Persist is changed.
type Cache interface {
	// Add adds a freshly-persisted blob to the cache.
	Add(key, value interface{})
	// Contains indicates the blob with the given name has already been
	// persisted.
	Contains(key interface{}) bool
	// Get retrieves the cached blob with the given name, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewCache creates a new LRU-based blob cache of the given size. One
// cache can be shared by any number of Stores over the same Persist.
func NewCache(size int) Cache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
