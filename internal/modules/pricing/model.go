// README: Fare rates and ride-info display values.
package pricing

import "kargo/internal/config"

type Rates struct {
	PricePerKm     float64
	PricePerMinute float64
	Currency       string
}

// DefaultRates are the per-kilometre and per-minute fares the driver app has always used.
var DefaultRates = Rates{PricePerKm: 10, PricePerMinute: 2, Currency: "₱"}

// RatesFromConfig converts the pricing section of the process config.
func RatesFromConfig(c config.PricingConfig) Rates {
	return Rates{PricePerKm: c.PricePerKm, PricePerMinute: c.PricePerMinute, Currency: c.Currency}
}

// RideInfo is the trio of display strings stored on a booking.
type RideInfo struct {
	RideTime     string `json:"rideTime"`
	RideDistance string `json:"rideDistance"`
	RidePrice    string `json:"ridePrice"`
}
