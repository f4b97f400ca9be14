// Package registry maps integer identities to runtime entities.
//
// Each Registry owns its own monotonic id sequence, so fibers, channels and
// processes live in separate id spaces. Identifiers start at 1 and are never
// reused within a run; removed entries release their storage, so there is no
// fixed table size and no slot leak.
package registry

import (
	"fmt"
	"sync"

	"github.com/viant/spindle/internal/idgen"
)

// Registry is a lock-guarded id → *T mapping. The lock protects map access
// only and is never held while callers block on an entity.
type Registry[T any] struct {
	mu       sync.RWMutex
	records  map[int64]*T
	reserved map[int64]struct{}
	seq      idgen.Sequence
	capacity int
}

// New creates a registry. A capacity <= 0 means unbounded.
func New[T any](capacity int) *Registry[T] {
	return &Registry[T]{
		records:  make(map[int64]*T),
		reserved: make(map[int64]struct{}),
		capacity: capacity,
	}
}

// Add issues a new id and registers v under it. The init callback, when
// supplied, runs under the registry lock after the id is issued and before v
// becomes visible to Load; returning an error unwinds the registration so no
// half-initialised entry is ever observable.
func (r *Registry[T]) Add(v *T, init func(id int64, v *T) error) (int64, error) {
	if v == nil {
		return 0, ErrNilEntity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureCapacityLocked(); err != nil {
		return 0, err
	}
	id := r.seq.Next()
	if init != nil {
		if err := init(id, v); err != nil {
			return 0, err
		}
	}
	r.records[id] = v
	return id, nil
}

// Reserve issues an id and holds a capacity slot for it without making
// anything visible to Load. Slow construction (fork, exec) happens between
// Reserve and Publish outside the lock; Cancel returns the slot on failure.
func (r *Registry[T]) Reserve() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureCapacityLocked(); err != nil {
		return 0, err
	}
	id := r.seq.Next()
	r.reserved[id] = struct{}{}
	return id, nil
}

// Publish makes v visible under a reserved id.
func (r *Registry[T]) Publish(id int64, v *T) error {
	if v == nil {
		return ErrNilEntity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reserved[id]; !ok {
		return fmt.Errorf("%w: %d not reserved", ErrUnknownID, id)
	}
	delete(r.reserved, id)
	r.records[id] = v
	return nil
}

// Cancel releases a reservation. The id is not reissued.
func (r *Registry[T]) Cancel(id int64) {
	r.mu.Lock()
	delete(r.reserved, id)
	r.mu.Unlock()
}

func (r *Registry[T]) ensureCapacityLocked() error {
	if r.capacity > 0 && len(r.records)+len(r.reserved) >= r.capacity {
		return fmt.Errorf("%w: capacity %d", ErrFull, r.capacity)
	}
	return nil
}

// Load returns the entity registered under id.
func (r *Registry[T]) Load(id int64) (*T, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	r.mu.RLock()
	v, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return v, nil
}

// Remove deletes id and returns the entity that was registered. Removing an
// unknown id is reported, never a fault.
func (r *Registry[T]) Remove(id int64) (*T, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	delete(r.records, id)
	return v, nil
}

// RemoveIf deletes id only when accept reports true for the registered
// entity. The predicate runs under the registry lock.
func (r *Registry[T]) RemoveIf(id int64, accept func(v *T) error) (*T, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	if err := accept(v); err != nil {
		return nil, err
	}
	delete(r.records, id)
	return v, nil
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// LastID returns the most recently issued id.
func (r *Registry[T]) LastID() int64 {
	return r.seq.Last()
}

// Capacity returns the live-entry ceiling, 0 when unbounded.
func (r *Registry[T]) Capacity() int {
	return r.capacity
}

// Range calls fn for every live entry until fn returns false. The snapshot is
// taken under the read lock; fn runs without it.
func (r *Registry[T]) Range(fn func(id int64, v *T) bool) {
	r.mu.RLock()
	snapshot := make(map[int64]*T, len(r.records))
	for k, v := range r.records {
		snapshot[k] = v
	}
	r.mu.RUnlock()
	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}
