// README: Pricing service computes fares and ride-info display values.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"kargo/internal/maps"
	"kargo/internal/types"
)

// Estimator is the distance-matrix part of the mapping service.
type Estimator interface {
	DistanceMatrix(ctx context.Context, origin, destination string) (maps.TravelEstimate, error)
}

type Service struct {
	rates     Rates
	estimator Estimator
}

func NewService(rates Rates, estimator Estimator) *Service {
	return &Service{rates: rates, estimator: estimator}
}

// Quote returns km*PricePerKm + min*PricePerMinute, unrounded.
// Negative, NaN or infinite inputs are rejected with types.ErrInvalidInput.
func (s *Service) Quote(durationSeconds, distanceMeters float64) (types.Money, error) {
	if !validMeasure(durationSeconds) || !validMeasure(distanceMeters) {
		return types.Money{}, fmt.Errorf("%w: duration=%v distance=%v", types.ErrInvalidInput, durationSeconds, distanceMeters)
	}
	km := distanceMeters / 1000
	minutes := durationSeconds / 60
	return types.Money{
		Amount:   km*s.rates.PricePerKm + minutes*s.rates.PricePerMinute,
		Currency: s.rates.Currency,
	}, nil
}

// Format renders an amount the way booking prices are stored, e.g. "₱40.00".
func (s *Service) Format(amount float64) string {
	return types.Money{Amount: amount, Currency: s.rates.Currency}.String()
}

// RideInfo asks the mapping service for the trip and prices it. When the mapping service
// has no element for the pair, the zero ride info is returned instead of an error.
func (s *Service) RideInfo(ctx context.Context, origin, destination string) (RideInfo, error) {
	if origin == "" || destination == "" {
		return RideInfo{}, fmt.Errorf("%w: origin and destination are required", types.ErrInvalidInput)
	}
	if s.estimator == nil {
		return RideInfo{}, fmt.Errorf("pricing: distance estimator: %w", types.ErrNotConfigured)
	}
	est, err := s.estimator.DistanceMatrix(ctx, origin, destination)
	if errors.Is(err, maps.ErrNoRoute) {
		return s.zeroRideInfo(), nil
	}
	if err != nil {
		return RideInfo{}, err
	}
	price, err := s.Quote(est.DurationSeconds, est.DistanceMeters)
	if err != nil {
		return RideInfo{}, err
	}
	return RideInfo{
		RideTime:     est.DurationText,
		RideDistance: est.DistanceText,
		RidePrice:    price.String(),
	}, nil
}

func (s *Service) zeroRideInfo() RideInfo {
	return RideInfo{RideTime: "0 min", RideDistance: "0 km", RidePrice: s.Format(0)}
}

func validMeasure(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
