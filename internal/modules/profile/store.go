// README: Profile persistence contract and the in-memory implementation.
package profile

import (
	"context"
	"sync"

	"kargo/internal/types"
)

type Store interface {
	Driver(ctx context.Context, id types.ID) (*Driver, error)
	Rider(ctx context.Context, id types.ID) (*Rider, error)
	// UpdateDriver overwrites the editable fields of an existing driver.
	UpdateDriver(ctx context.Context, id types.ID, info DriverInfo) error
	// SetProfilePicture merges the picture URL, creating the driver document if needed.
	SetProfilePicture(ctx context.Context, id types.ID, url string) error
}

type MemoryStore struct {
	mu      sync.RWMutex
	drivers map[types.ID]Driver
	riders  map[types.ID]Rider
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drivers: make(map[types.ID]Driver), riders: make(map[types.ID]Rider)}
}

func (s *MemoryStore) PutDriver(d Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

func (s *MemoryStore) PutRider(r Rider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.riders[r.ID] = r
}

func (s *MemoryStore) Driver(_ context.Context, id types.ID) (*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) Rider(_ context.Context, id types.ID) (*Rider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.riders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, id types.ID, info DriverInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return ErrNotFound
	}
	info.apply(&d)
	s.drivers[id] = d
	return nil
}

func (s *MemoryStore) SetProfilePicture(_ context.Context, id types.ID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		d = Driver{ID: id}
	}
	d.ProfilePicture = url
	s.drivers[id] = d
	return nil
}
