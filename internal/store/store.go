// Package store wires the three storage engines together behind a single
// handle, replacing original_source's bare global pointers (global_array,
// global_tree, global_hash) with a struct passed by reference — the
// "global singletons to dependency injection" substitution noted in
// spec.md §9.
package store

import (
	"kvstore-reactor/internal/engine/array"
	"kvstore-reactor/internal/engine/hash"
	"kvstore-reactor/internal/engine/rbtree"
)

// Store holds the three engine handles. A *Store is safe to use only from
// the single reactor goroutine; it carries no locking of its own beyond
// what the hash engine already provides internally.
type Store struct {
	Array *array.Engine
	Tree  *rbtree.Tree
	Hash  *hash.Engine
}

// New constructs and creates all three engines.
func New(arrayCapacity, hashSlots int) (*Store, error) {
	s := &Store{
		Array: array.New(),
		Tree:  rbtree.New(),
		Hash:  hash.New(),
	}
	if err := s.Array.Create(arrayCapacity); err != nil {
		return nil, err
	}
	if err := s.Tree.Create(); err != nil {
		return nil, err
	}
	if err := s.Hash.Create(hashSlots); err != nil {
		return nil, err
	}
	return s, nil
}

// Close destroys all three engines. Safe to call more than once.
func (s *Store) Close() error {
	if err := s.Array.Destroy(); err != nil {
		return err
	}
	if err := s.Tree.Destroy(); err != nil {
		return err
	}
	return s.Hash.Destroy()
}
