// Package store persists named circuits for the serve mode.
//
// A stored circuit is just a name plus extended CDC text; graphs and
// layouts are always regenerated from the text through the pipeline. Two
// implementations exist: an in-memory store for tests and single-process
// use, and a MongoDB-backed store for deployments.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no circuit has the requested id.
var ErrNotFound = errors.New("circuit not found")

// Circuit is one stored circuit document.
type Circuit struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CDC       string    `json:"cdc" bson:"cdc"` // extended canonical text
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence interface for circuits.
type Store interface {
	// Create stores a new circuit and returns it with id and timestamps set.
	Create(ctx context.Context, name, cdcText string) (*Circuit, error)

	// Get returns the circuit with the given id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Circuit, error)

	// List returns all circuits sorted by creation time.
	List(ctx context.Context) ([]*Circuit, error)

	// Update replaces name and text of an existing circuit.
	Update(ctx context.Context, id uuid.UUID, name, cdcText string) (*Circuit, error)

	// Delete removes a circuit, or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore keeps circuits in a map. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	circuits map[uuid.UUID]Circuit
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{circuits: make(map[uuid.UUID]Circuit)}
}

// Create stores a new circuit.
func (s *MemoryStore) Create(ctx context.Context, name, cdcText string) (*Circuit, error) {
	now := time.Now().UTC()
	c := Circuit{
		ID:        uuid.New(),
		Name:      name,
		CDC:       cdcText,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.circuits[c.ID] = c
	s.mu.Unlock()
	return &c, nil
}

// Get returns the circuit with the given id.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Circuit, error) {
	s.mu.RLock()
	c, ok := s.circuits[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// List returns all circuits sorted by creation time, then id.
func (s *MemoryStore) List(ctx context.Context) ([]*Circuit, error) {
	s.mu.RLock()
	out := make([]*Circuit, 0, len(s.circuits))
	for _, c := range s.circuits {
		c := c
		out = append(out, &c)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Circuit) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Update replaces name and text of an existing circuit.
func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, name, cdcText string) (*Circuit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.circuits[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Name = name
	c.CDC = cdcText
	c.UpdatedAt = time.Now().UTC()
	s.circuits[id] = c
	return &c, nil
}

// Delete removes a circuit.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.circuits[id]; !ok {
		return ErrNotFound
	}
	delete(s.circuits, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
