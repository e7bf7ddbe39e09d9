package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// ErrDuplicateKey is returned when a record with the same key already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrKeyChanged is returned when a Modify callback rewrites the record key.
var ErrKeyChanged = errors.New("record key changed")

// MemoryStore is a mutex guarded table keeping records in insertion order.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	key   func(T) string
	clone func(T) T
	order []string
	rows  map[string]T
}

// NewMemoryStore builds a store keyed by key. clone, when set, deep copies records
// crossing the store boundary.
func NewMemoryStore[T any](key func(T) string, clone func(T) T, seed ...T) *MemoryStore[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	s := &MemoryStore[T]{key: key, clone: clone, rows: make(map[string]T, len(seed))}
	for _, row := range seed {
		k := key(row)
		if _, ok := s.rows[k]; ok {
			continue
		}
		s.order = append(s.order, k)
		s.rows[k] = clone(row)
	}
	return s
}

// List returns every record in insertion order.
func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.clone(s.rows[k]))
	}
	return out, nil
}

// FindByID returns the record stored under id or sql.ErrNoRows.
func (s *MemoryStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := s.clone(row)
	return &out, nil
}

// Create inserts a record whose key must be new.
func (s *MemoryStore[T]) Create(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(*record)
	if _, ok := s.rows[k]; ok {
		return ErrDuplicateKey
	}
	s.order = append(s.order, k)
	s.rows[k] = s.clone(*record)
	return nil
}

// Update replaces an existing record.
func (s *MemoryStore[T]) Update(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(*record)
	if _, ok := s.rows[k]; !ok {
		return sql.ErrNoRows
	}
	s.rows[k] = s.clone(*record)
	return nil
}

// Modify applies fn to a copy of the record stored under id and writes it back while
// holding the store lock. An error from fn aborts the write and is returned as is.
func (s *MemoryStore[T]) Modify(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	next := s.clone(row)
	if err := fn(&next); err != nil {
		return nil, err
	}
	if s.key(next) != id {
		return nil, ErrKeyChanged
	}
	s.rows[id] = s.clone(next)
	return &next, nil
}

// Upsert inserts or replaces a record.
func (s *MemoryStore[T]) Upsert(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.key(*record)
	if _, ok := s.rows[k]; !ok {
		s.order = append(s.order, k)
	}
	s.rows[k] = s.clone(*record)
	return nil
}

// Delete removes the record stored under id.
func (s *MemoryStore[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// AppendBatch inserts every record or none. It fails with ErrDuplicateKey when any
// key already exists or repeats within the batch.
func (s *MemoryStore[T]) AppendBatch(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		k := s.key(r)
		if _, ok := s.rows[k]; ok {
			return ErrDuplicateKey
		}
		if _, ok := seen[k]; ok {
			return ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	for _, r := range records {
		k := s.key(r)
		s.order = append(s.order, k)
		s.rows[k] = s.clone(r)
	}
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
