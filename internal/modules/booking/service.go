// README: Booking service implements the claim/pickup/dropoff lifecycle on top of a Store.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"kargo/internal/types"
)

var (
	ErrAlreadyClaimed = errors.New("booking already claimed by another driver")
	ErrInvalidState   = errors.New("invalid booking state transition")
	ErrNotAssigned    = errors.New("booking is not assigned to this driver")
	ErrNotFound       = errors.New("booking not found")
)

type Service struct {
	store  Store
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the lifecycle. events may be nil when no broker is configured.
func NewService(store Store, events EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, events: events, logger: logger, now: time.Now}
}

// Claim attaches driverID to an unclaimed booking. Concurrent claims are resolved by
// the store transaction: exactly one succeeds, the rest see ErrAlreadyClaimed.
func (s *Service) Claim(ctx context.Context, id, driverID types.ID) (*Booking, error) {
	return s.transition(ctx, id, driverID, StateClaimed, func(cur *Booking) (Patch, error) {
		if cur.DriverID != nil && *cur.DriverID != "" {
			return Patch{}, ErrAlreadyClaimed
		}
		return claimPatch(driverID), nil
	})
}

// ConfirmPickup marks a claimed booking as picked up by its assigned driver.
func (s *Service) ConfirmPickup(ctx context.Context, id, driverID types.ID) (*Booking, error) {
	return s.transition(ctx, id, driverID, StatePickedUp, func(cur *Booking) (Patch, error) {
		if err := guard(cur, driverID, StatePickedUp); err != nil {
			return Patch{}, err
		}
		return pickupPatch, nil
	})
}

// ConfirmDropoff completes a picked-up booking. Dropped-off bookings are terminal.
func (s *Service) ConfirmDropoff(ctx context.Context, id, driverID types.ID) (*Booking, error) {
	return s.transition(ctx, id, driverID, StateDroppedOff, func(cur *Booking) (Patch, error) {
		if err := guard(cur, driverID, StateDroppedOff); err != nil {
			return Patch{}, err
		}
		return dropoffPatch, nil
	})
}

func guard(cur *Booking, driverID types.ID, to State) error {
	if from := cur.State(); !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, from, to)
	}
	if !cur.AssignedTo(driverID) {
		return ErrNotAssigned
	}
	return nil
}

func (s *Service) transition(ctx context.Context, id, driverID types.ID, to State, check TxFunc) (*Booking, error) {
	if id == "" || driverID == "" {
		return nil, fmt.Errorf("%w: booking id and driver id are required", types.ErrInvalidInput)
	}
	var from State
	b, err := s.store.Transact(ctx, id, func(cur *Booking) (Patch, error) {
		from = cur.State()
		return check(cur)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking transition", "booking_id", id, "driver_id", driverID, "from", from, "to", to)
	s.publish(ctx, Event{
		ID:         uuid.NewString(),
		BookingID:  id,
		FromState:  from,
		ToState:    to,
		DriverID:   driverID,
		OccurredAt: s.now(),
	})
	return b, nil
}

// publish never fails the transition; the booking record is the source of truth.
func (s *Service) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("booking event publish failed", "booking_id", e.BookingID, "to", e.ToState, "error", err)
	}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// Mine lists the driver's bookings, most recently created first.
func (s *Service) Mine(ctx context.Context, driverID types.ID) ([]Booking, error) {
	list, err := s.store.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}

// Current returns the driver's newest booking that has not been dropped off.
func (s *Service) Current(ctx context.Context, driverID types.ID) (*Booking, error) {
	list, err := s.store.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	var current *Booking
	for i := range list {
		b := &list[i]
		if b.IsDropoff {
			continue
		}
		if current == nil || b.Timestamp.After(current.Timestamp) {
			current = b
		}
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return current, nil
}

// RouteDestination is where the driver heads next: the dropoff once the rider is on
// board, the pickup while the booking is only claimed.
func RouteDestination(b *Booking) types.Point {
	if b.State() == StateClaimed {
		return b.PickupCoords
	}
	return b.DropoffCoords
}
