// README: Booking persistence contract implemented by the Firestore, Postgres and memory stores.
package booking

import (
	"context"

	"kargo/internal/types"
)

// TxFunc inspects the booking as read inside a transaction and returns the single write
// to commit. Returning an error aborts the transaction and is passed through unchanged.
type TxFunc func(current *Booking) (Patch, error)

type Store interface {
	Get(ctx context.Context, id types.ID) (*Booking, error)
	// List returns every booking in the store's natural (insertion) order.
	List(ctx context.Context) ([]Booking, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]Booking, error)
	// Watch emits a full snapshot of the collection on subscription and after every change.
	// The channel is closed when ctx ends or the subscription fails; callers may watch again.
	Watch(ctx context.Context) (<-chan []Booking, error)
	// Transact runs fn against a fresh read and commits its patch atomically with respect
	// to every other Transact on the same booking.
	Transact(ctx context.Context, id types.ID, fn TxFunc) (*Booking, error)
}

func clone(b *Booking) Booking {
	c := *b
	if b.DriverID != nil {
		d := *b.DriverID
		c.DriverID = &d
	}
	return c
}
