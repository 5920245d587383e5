// README: In-memory booking store for local development and tests.
package booking

import (
	"context"
	"sync"

	"kargo/internal/types"
)

type MemoryStore struct {
	mu      sync.Mutex
	order   []types.ID
	docs    map[types.ID]*Booking
	subs    map[int]chan []Booking
	nextSub int
}

func NewMemoryStore(seed ...Booking) *MemoryStore {
	s := &MemoryStore{
		docs: make(map[types.ID]*Booking),
		subs: make(map[int]chan []Booking),
	}
	for _, b := range seed {
		s.Put(b)
	}
	return s
}

// Put inserts or replaces a booking, the way the rider application writes them.
func (s *MemoryStore) Put(b Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	c := clone(&b)
	s.docs[b.ID] = &c
	s.notifyLocked()
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(b)
	return &c, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *MemoryStore) ListByDriver(_ context.Context, driverID types.ID) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Booking, 0)
	for _, id := range s.order {
		b := s.docs[id]
		if b.DriverID != nil && *b.DriverID == driverID {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (s *MemoryStore) Watch(ctx context.Context) (<-chan []Booking, error) {
	ch := make(chan []Booking, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// Transact holds the store lock for the whole read-modify-write, which serialises
// concurrent transitions on the same booking.
func (s *MemoryStore) Transact(ctx context.Context, id types.ID, fn TxFunc) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	read := clone(cur)
	patch, err := fn(&read)
	if err != nil {
		return nil, err
	}
	patch.Apply(cur)
	s.notifyLocked()
	out := clone(cur)
	return &out, nil
}

func (s *MemoryStore) snapshotLocked() []Booking {
	out := make([]Booking, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.docs[id]))
	}
	return out
}

// notifyLocked replaces any undelivered snapshot so slow watchers only see the latest state.
func (s *MemoryStore) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	for _, ch := range s.subs {
		snap := s.snapshotLocked()
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
