// README: Booking feed: the bookings a driver may see and accept, one-shot or streamed.
package feed

import (
	"context"

	"kargo/internal/modules/booking"
	"kargo/internal/modules/profile"
	"kargo/internal/types"
)

// SafetyMargin is added to the rider and driver weight before comparing with MaxLoad.
const SafetyMargin = 10

// Eligible keeps bookings that are not dropped off, are unclaimed or claimed by this
// driver, and fit the driver's capacity. The result is the filtered input reversed,
// so the most recently stored booking comes first. A nil driver sees nothing.
func Eligible(all []booking.Booking, driver *profile.Driver) []booking.Booking {
	out := make([]booking.Booking, 0)
	if driver == nil {
		return out
	}
	for i := len(all) - 1; i >= 0; i-- {
		b := &all[i]
		if b.IsDropoff {
			continue
		}
		if b.State() != booking.StateUnclaimed && !b.AssignedTo(driver.ID) {
			continue
		}
		if b.UserWeight+driver.Weight+SafetyMargin >= driver.MaxLoad {
			continue
		}
		out = append(out, *b)
	}
	return out
}

// Bookings is the read side of booking.Store used by the feed.
type Bookings interface {
	List(ctx context.Context) ([]booking.Booking, error)
	Watch(ctx context.Context) (<-chan []booking.Booking, error)
}

type Drivers interface {
	Driver(ctx context.Context, id types.ID) (*profile.Driver, error)
}

type Service struct {
	bookings Bookings
	drivers  Drivers
}

func NewService(bookings Bookings, drivers Drivers) *Service {
	return &Service{bookings: bookings, drivers: drivers}
}

// Feed returns the driver's current feed.
func (s *Service) Feed(ctx context.Context, driverID types.ID) ([]booking.Booking, error) {
	driver, err := s.drivers.Driver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	return Eligible(all, driver), nil
}

// Stream emits the driver's feed on subscription and after every change to the booking
// collection. The driver profile is re-read for every snapshot, so a capacity edit takes
// effect with the next booking change; if that read fails the last profile is kept.
// The consumer stops it by cancelling ctx; the channel is closed by the producer when
// ctx ends or the underlying watch stops, after which Stream may be called again.
func (s *Service) Stream(ctx context.Context, driverID types.ID) (<-chan []booking.Booking, error) {
	driver, err := s.drivers.Driver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.bookings.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan []booking.Booking, 1)
	go func() {
		defer close(out)
		for {
			select {
			case all, ok := <-snapshots:
				if !ok {
					return
				}
				if fresh, err := s.drivers.Driver(ctx, driverID); err == nil {
					driver = fresh
				}
				select {
				case out <- Eligible(all, driver):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
