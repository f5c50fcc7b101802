package constdict

import (
	"sync"

	"github.com/changhiskhan/object-database/types"
)

var (
	registryMu sync.Mutex
	registry   = map[string]*DictType{}
)

// Make returns the DictType for the given key and value element types.
// Parameterizations are interned process-wide: equal parameterizations
// return the identical *DictType.
func Make(key, value types.Type) *DictType {
	name := "ConstDict(" + key.Name() + ", " + value.Name() + ")"
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[name]; ok {
		return t
	}
	t := &DictType{key: key, value: value, name: name}
	registry[name] = t
	return t
}

// Compatible reports whether other describes the same container shape
// with recursively compatible key and value types. Compatible types
// hold interchangeable encoded forms and may be unified by a
// deduplicating registry.
func (t *DictType) Compatible(other types.Type) bool {
	o, ok := other.(*DictType)
	if !ok {
		return false
	}
	if t == o {
		return true
	}
	return t.key.Compatible(o.key) && t.value.Compatible(o.value)
}

var _ types.Type = (*DictType)(nil)
