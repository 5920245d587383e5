// README: Income service builds a driver's income report from their bookings.
package income

import (
	"context"
	"time"

	"kargo/internal/modules/booking"
	"kargo/internal/types"
)

// Bookings lists a driver's bookings newest first (booking.Service.Mine).
type Bookings interface {
	Mine(ctx context.Context, driverID types.ID) ([]booking.Booking, error)
}

type Service struct {
	bookings Bookings
	agg      *Aggregator
	now      func() time.Time
}

func NewService(bookings Bookings, cfg Config) *Service {
	return &Service{bookings: bookings, agg: NewAggregator(cfg), now: time.Now}
}

// Report aggregates every booking assigned to the driver. date narrows Filtered to one
// day (nil keeps every day); year selects the monthly year when year-aware aggregation
// is enabled (0 means the current year).
func (s *Service) Report(ctx context.Context, driverID types.ID, date *time.Time, year int) (*Report, error) {
	list, err := s.bookings.Mine(ctx, driverID)
	if err != nil {
		return nil, err
	}
	daily, err := s.agg.ByDay(list)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = s.now().In(s.agg.cfg.Location).Year()
	}
	monthly, err := s.agg.ByMonth(list, year)
	if err != nil {
		return nil, err
	}
	filtered := daily
	if date != nil {
		filtered = s.agg.FilterByDate(daily, *date)
	}
	total := Total(daily)
	return &Report{
		Daily:    daily,
		Filtered: filtered,
		Monthly:  monthly,
		Total:    total,
		Split:    s.agg.Split(float64(total)),
	}, nil
}

// Location is the zone day keys are computed in.
func (s *Service) Location() *time.Location {
	return s.agg.cfg.Location
}
