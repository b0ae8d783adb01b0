// Package intern maps data source names to compact 64-bit identifiers.
//
// Identifiers are the xxHash64 of the name. When two different names hash to the same value
// the later name is assigned the next free identifier and the collision flag is raised, so
// identifiers stay unique within one Interner.
package intern

import (
	"fmt"
	"sync"

	"github.com/arloliu/tsview/errs"
	"github.com/cespare/xxhash/v2"
)

// ID identifies an interned source name.
type ID uint64

// Hash computes the xxHash64 of name.
func Hash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Interner assigns stable IDs to names. It is safe for concurrent use.
type Interner struct {
	mu           sync.RWMutex
	byID         map[ID]string
	byName       map[string]ID
	names        []string // insertion order
	hasCollision bool
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		byID:   make(map[ID]string),
		byName: make(map[string]ID),
		names:  make([]string, 0),
	}
}

// Intern returns the ID for name, assigning one on first use.
// Returns errs.ErrInvalidSourceName for an empty name.
func (in *Interner) Intern(name string) (ID, error) {
	if name == "" {
		return 0, errs.ErrInvalidSourceName
	}

	in.mu.RLock()
	id, ok := in.byName[name]
	in.mu.RUnlock()
	if ok {
		return id, nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.byName[name]; ok {
		return id, nil
	}

	id = ID(Hash(name))
	if id == 0 {
		id++ // zero is reserved for "no name"
	}
	for probes := 0; ; probes++ {
		existing, taken := in.byID[id]
		if !taken {
			break
		}
		if existing == name {
			return id, nil
		}
		if probes == len(in.byID) {
			return 0, fmt.Errorf("%w: no free id for %q", errs.ErrHashCollision, name)
		}
		in.hasCollision = true
		id++
	}

	in.byID[id] = name
	in.byName[name] = id
	in.names = append(in.names, name)

	return id, nil
}

// Lookup returns the ID previously assigned to name.
func (in *Interner) Lookup(name string) (ID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	id, ok := in.byName[name]

	return id, ok
}

// Name returns the name interned under id.
func (in *Interner) Name(id ID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	name, ok := in.byID[id]

	return name, ok
}

// HasCollision reports whether any two names shared a hash.
func (in *Interner) HasCollision() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()

	return in.hasCollision
}

// Names returns the interned names in insertion order.
func (in *Interner) Names() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]string, len(in.names))
	copy(out, in.names)

	return out
}

// Count returns the number of interned names.
func (in *Interner) Count() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	return len(in.names)
}

// Reset forgets all names, keeping allocated map capacity.
func (in *Interner) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()

	clear(in.byID)
	clear(in.byName)
	in.names = in.names[:0]
	in.hasCollision = false
}
