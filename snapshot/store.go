// Package snapshot stores encoded dicts in content-addressed storage.
// Every blob is named by the hash of its bytes, so a name can be
// verified against the content on load, identical content is stored
// once, and stored blobs never change.
package snapshot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/minio/blake2b-simd"

	"github.com/changhiskhan/object-database/constdict"
)

// Persist is the interface for loading and storing encoded dicts. The
// given string identity corresponds to the content, which is immutable
// and never modified.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(ctx context.Context, name string, data []byte) error
	// Load retrieves previously-stored bytes by name.
	Load(ctx context.Context, name string) ([]byte, error)
}

// ErrContentMismatch reports a loaded blob whose bytes do not hash to
// its name.
var ErrContentMismatch = errors.New("content hash mismatch")

// Config controls how dicts are persisted and loaded.
type Config struct {
	// StoreImmutablePartsWith is used to store and load encoded dicts.
	StoreImmutablePartsWith Persist

	// Cache, if set, remembers recently stored and loaded blobs so
	// they are not re-stored or re-fetched. NewCache provides one.
	Cache Cache

	// Debug enables diagnostic prints.
	Debug bool
}

// Store saves and loads dicts through a Persist.
type Store struct {
	persist Persist
	cache   Cache
	debug   bool
}

// NewStore returns a Store for the given configuration.
func NewStore(cfg Config) (*Store, error) {
	if cfg.StoreImmutablePartsWith == nil {
		return nil, errors.New("config needs a Persist in StoreImmutablePartsWith")
	}
	return &Store{
		persist: cfg.StoreImmutablePartsWith,
		cache:   cfg.Cache,
		debug:   cfg.Debug,
	}, nil
}

// Save encodes d and stores it under its content-derived name, which
// it returns. Content the cache already knows is not re-stored.
func (s *Store) Save(ctx context.Context, d constdict.Dict) (string, error) {
	data := d.Encode()
	name := contentName(data)
	if s.cache != nil && s.cache.Contains(name) {
		return name, nil
	}
	if err := s.persist.Store(ctx, name, data); err != nil {
		return "", fmt.Errorf("persist store: %w", err)
	}
	if s.debug {
		fmt.Printf("stored %d bytes as %s\n", len(data), name)
	}
	if s.cache != nil {
		s.cache.Add(name, data)
	}
	return name, nil
}

// Load retrieves the named blob, verifies that its content hashes to
// name, and decodes it as a dict of type t.
func (s *Store) Load(ctx context.Context, t *constdict.DictType, name string) (constdict.Dict, error) {
	var data []byte
	if s.cache != nil {
		if v, ok := s.cache.Get(name); ok {
			data = v.([]byte)
		}
	}
	if data == nil {
		var err error
		data, err = s.persist.Load(ctx, name)
		if err != nil {
			return constdict.Dict{}, fmt.Errorf("persist load %s: %w", name, err)
		}
		if contentName(data) != name {
			return constdict.Dict{}, fmt.Errorf("load %s: %w", name, ErrContentMismatch)
		}
		if s.debug {
			fmt.Printf("loaded %d bytes from %s\n", len(data), name)
		}
		if s.cache != nil {
			s.cache.Add(name, data)
		}
	}
	d, err := t.Decode(data)
	if err != nil {
		return constdict.Dict{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return d, nil
}

func contentName(data []byte) string {
	sum := blake2b.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
