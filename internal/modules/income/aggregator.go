// README: Income aggregation over a driver's bookings (per day, per month, split).
package income

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kargo/internal/modules/booking"
	"kargo/internal/types"
)

var ErrPriceParse = errors.New("malformed ride price")

type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Aggregator{cfg: cfg}
}

// ParsePrice strips the first occurrence of the currency symbol and reads the leading
// integer: "₱40.00" -> 40. Fractional cents are dropped.
func ParsePrice(price, currency string) (int64, error) {
	s := price
	if currency != "" {
		s = strings.Replace(s, currency, "", 1)
	}
	n, ok := types.LeadingInt(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, price)
	}
	return n, nil
}

// ByDay sums prices per day key, keeping days in the order they are first seen.
func (a *Aggregator) ByDay(bookings []booking.Booking) ([]DailyIncome, error) {
	out := make([]DailyIncome, 0)
	index := make(map[DayKey]int)
	for _, b := range bookings {
		price, err := ParsePrice(b.RidePrice, a.cfg.Currency)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		key := DayKeyOf(b.Timestamp, a.cfg.Location)
		if i, ok := index[key]; ok {
			out[i].Income += price
			continue
		}
		index[key] = len(out)
		out = append(out, DailyIncome{Key: key, Day: key.String(), Income: price})
	}
	return out, nil
}

// ByMonth returns twelve entries Jan..Dec. Bookings from every year fold into the same
// month unless the aggregator is year aware, in which case only year is counted.
func (a *Aggregator) ByMonth(bookings []booking.Booking, year int) ([]MonthlyIncome, error) {
	var sums [12]int64
	for _, b := range bookings {
		t := b.Timestamp.In(a.cfg.Location)
		if a.cfg.YearAware && t.Year() != year {
			continue
		}
		price, err := ParsePrice(b.RidePrice, a.cfg.Currency)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		sums[t.Month()-1] += price
	}
	out := make([]MonthlyIncome, 12)
	for i := range out {
		out[i] = MonthlyIncome{Month: monthNames[i], Income: sums[i]}
	}
	return out, nil
}

func (a *Aggregator) Split(total float64) Split {
	return Split{
		PlatformShare: total * a.cfg.PlatformShare,
		DriverShare:   total * (1 - a.cfg.PlatformShare),
	}
}

// FilterByDate keeps the entries whose day key equals the date's.
func (a *Aggregator) FilterByDate(daily []DailyIncome, date time.Time) []DailyIncome {
	key := DayKeyOf(date, a.cfg.Location)
	out := make([]DailyIncome, 0, 1)
	for _, d := range daily {
		if d.Key == key {
			out = append(out, d)
		}
	}
	return out
}

func Total(daily []DailyIncome) int64 {
	var sum int64
	for _, d := range daily {
		sum += d.Income
	}
	return sum
}
