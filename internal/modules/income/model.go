// README: Income report value types.
package income

import (
	"fmt"
	"time"
)

// DayKey groups bookings by calendar day in the configured time zone.
type DayKey struct {
	Day   int
	Month time.Month
	Year  int
}

func DayKeyOf(t time.Time, loc *time.Location) DayKey {
	if loc != nil {
		t = t.In(loc)
	}
	return DayKey{Day: t.Day(), Month: t.Month(), Year: t.Year()}
}

// String renders the key as the driver app displays it, e.g. "5 Jan 2024".
func (k DayKey) String() string {
	return fmt.Sprintf("%d %s %d", k.Day, monthNames[k.Month-1], k.Year)
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type DailyIncome struct {
	Key    DayKey `json:"-"`
	Day    string `json:"day"`
	Income int64  `json:"income"`
}

type MonthlyIncome struct {
	Month  string `json:"month"`
	Income int64  `json:"income"`
}

type Split struct {
	PlatformShare float64 `json:"platformShare"`
	DriverShare   float64 `json:"driverShare"`
}

type Report struct {
	Daily    []DailyIncome   `json:"daily"`
	Filtered []DailyIncome   `json:"filtered"`
	Monthly  []MonthlyIncome `json:"monthly"`
	Total    int64           `json:"total"`
	Split    Split           `json:"split"`
}

type Config struct {
	// PlatformShare is the fraction of income kept by the platform (0.4).
	PlatformShare float64
	// YearAware limits monthly totals to one calendar year instead of folding all years together.
	YearAware bool
	Location  *time.Location
	Currency  string
}
