package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/inkacorp/solicitudes/internal/record"
)

// MemoryStore keeps rows in process. It backs tests and the demo mode.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]map[string]any
}

// NewMemoryStore creates a store holding rows.
func NewMemoryStore(rows ...map[string]any) *MemoryStore {
	s := &MemoryStore{rows: make(map[string]map[string]any)}
	for _, row := range rows {
		s.Put(row)
	}
	return s
}

// Put inserts or replaces a row keyed by its identifier.
func (s *MemoryStore) Put(row map[string]any) {
	id := record.FromMap(row).ID
	s.mu.Lock()
	s.rows[id] = copyRow(row)
	s.mu.Unlock()
}

func (s *MemoryStore) List(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]record.Record, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, record.FromMap(row))
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	observe(opList, nil)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}
	s.mu.RLock()
	row, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		observe(opGet, ErrNotFound)
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	observe(opGet, nil)
	return record.FromMap(row), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		observe(opUpdate, ErrNotFound)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for k, v := range fields {
		row[k] = v
	}
	observe(opUpdate, nil)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		observe(opDelete, ErrNotFound)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.rows, id)
	observe(opDelete, nil)
	return nil
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
