package snapshot

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryStore struct {
	entries map[string][]byte
	l       sync.Mutex
}

// NewInMemoryStore provides a Persist that keeps blobs in a map,
// usually for testing.
func NewInMemoryStore() Persist {
	return &inMemoryStore{}
}

func (ims *inMemoryStore) Store(_ context.Context, name string, data []byte) error {
	ims.l.Lock()
	if ims.entries == nil {
		ims.entries = map[string][]byte{name: data}
	} else {
		ims.entries[name] = data
	}
	ims.l.Unlock()
	return nil
}

func (ims *inMemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	ims.l.Lock()
	data, ok := ims.entries[name]
	ims.l.Unlock()
	if !ok {
		return nil, fmt.Errorf("inMemoryStore entry not found for %s", name)
	}
	return data, nil
}
