// README: Common money value object used across modules.
package types

import "fmt"

// Money is a display-oriented amount; bookings persist prices as formatted strings.
type Money struct {
	Amount   float64
	Currency string
}

// String renders the amount with two decimals behind the currency symbol, e.g. "₱40.00".
func (m Money) String() string {
	return fmt.Sprintf("%s%.2f", m.Currency, m.Amount)
}
