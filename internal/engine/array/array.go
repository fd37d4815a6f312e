// Package array implements the linear-scan key/value engine: a fixed-capacity
// slot vector with hole reuse on delete, grounded on original_source's
// kvs_array.c.
package array

import "kvstore-reactor/internal/kverr"

// DefaultCapacity mirrors KVS_ARRAY_SIZE's role in the original source, sized
// up for the Go reactor's much higher expected connection/key counts.
const DefaultCapacity = 1 << 16

type slot struct {
	key   string
	value string
	used  bool
}

// Engine is the array-backed store. The zero value is not usable; call
// Create before any other method.
type Engine struct {
	slots     []slot
	capacity  int
	count     int
	highWater int // one past the highest slot index ever occupied
}

// New returns an uncreated engine, mirroring the source's pattern of a
// zeroed struct that must be handed to Create before use.
func New() *Engine {
	return &Engine{}
}

// Create allocates the backing slot vector. BadParam if the engine already
// holds one — the source's kvs_array_create returns Internal for a double
// create against a non-NULL table; we classify re-create as a caller
// programming error instead, which BadParam communicates more precisely in
// Go.
func (e *Engine) Create(capacity int) error {
	if e.slots != nil {
		return kverr.ErrBadParam
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	e.slots = make([]slot, capacity)
	e.capacity = capacity
	e.count = 0
	e.highWater = 0
	return nil
}

// Destroy releases the backing slot vector. Idempotent: destroying an
// already-destroyed or never-created engine is a no-op success, matching
// kvs_array_destroy's NULL-tolerant free.
func (e *Engine) Destroy() error {
	e.slots = nil
	e.capacity = 0
	e.count = 0
	e.highWater = 0
	return nil
}

// Set inserts a new key. AlreadyExists if key is present. NoMemory if the
// capacity is exhausted and no hole is available for reuse.
//
// The scan bound is highWater, not count — a deliberate deviation from
// kvs_array.c, whose scan bound is count itself. There, deleting a low-index
// key decrements count and silently strands every key at or above the new
// count from every subsequent get/set/mod/del, since they fall outside the
// i<count scan range. highWater only ever grows, so a hole below it stays
// reachable for as long as the slot above it remains occupied.
func (e *Engine) Set(key, value string) error {
	if e.slots == nil {
		return kverr.ErrInternal
	}
	emptyPos := -1
	for i := 0; i < e.highWater; i++ {
		if !e.slots[i].used {
			if emptyPos == -1 {
				emptyPos = i
			}
			continue
		}
		if e.slots[i].key == key {
			return kverr.ErrAlreadyExists
		}
	}
	if emptyPos != -1 {
		e.slots[emptyPos] = slot{key: key, value: value, used: true}
		e.count++
		return nil
	}
	if e.highWater >= e.capacity {
		return kverr.ErrNoMemory
	}
	e.slots[e.highWater] = slot{key: key, value: value, used: true}
	e.highWater++
	e.count++
	return nil
}

// Get returns the value for key, or NotFound.
func (e *Engine) Get(key string) (string, error) {
	if e.slots == nil {
		return "", kverr.ErrInternal
	}
	for i := 0; i < e.highWater; i++ {
		if e.slots[i].used && e.slots[i].key == key {
			return e.slots[i].value, nil
		}
	}
	return "", kverr.ErrNotFound
}

// Mod replaces the value for an existing key. NotFound if absent. The
// replacement is atomic from the caller's perspective: a failed lookup never
// mutates state, matching kvs_array_mod's allocate-before-free discipline.
func (e *Engine) Mod(key, value string) error {
	if e.slots == nil {
		return kverr.ErrInternal
	}
	for i := 0; i < e.highWater; i++ {
		if e.slots[i].used && e.slots[i].key == key {
			e.slots[i].value = value
			return nil
		}
	}
	return kverr.ErrNotFound
}

// Del removes a key, opening a hole below highWater for later reuse.
func (e *Engine) Del(key string) error {
	if e.slots == nil {
		return kverr.ErrInternal
	}
	for i := 0; i < e.highWater; i++ {
		if e.slots[i].used && e.slots[i].key == key {
			e.slots[i] = slot{}
			e.count--
			return nil
		}
	}
	return kverr.ErrNotFound
}

// Exist reports whether key is present.
func (e *Engine) Exist(key string) error {
	_, err := e.Get(key)
	return err
}

// Count returns the number of live keys.
func (e *Engine) Count() int { return e.count }
