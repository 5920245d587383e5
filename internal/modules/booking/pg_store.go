// README: Booking store backed by PostgreSQL, with change notifications over Redis pub/sub.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"kargo/internal/types"
)

// ChangesChannel is the Redis channel carrying the id of every written booking.
const ChangesChannel = "kargo:book:changed"

// pollInterval drives Watch when no Redis client is configured.
const pollInterval = 2 * time.Second

type PGStore struct {
	db     *pgxpool.Pool
	rdb    *redis.Client
	logger *slog.Logger
}

func NewPGStore(db *pgxpool.Pool, rdb *redis.Client, logger *slog.Logger) *PGStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGStore{db: db, rdb: rdb, logger: logger}
}

const selectColumns = `
        SELECT id, user_id, driver_id,
               pickup_location, pickup_lat, pickup_lng,
               dropoff_location, dropoff_lat, dropoff_lng,
               ride_distance, ride_time, ride_price,
               is_pick_up, is_dropoff, created_at, user_weight,
               user_first_name, user_last_name, user_phone_number
        FROM book`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Network("postgres get booking", err)
	}
	return b, nil
}

func (s *PGStore) List(ctx context.Context) ([]Booking, error) {
	return s.query(ctx, selectColumns+` ORDER BY seq`)
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID types.ID) ([]Booking, error) {
	return s.query(ctx, selectColumns+` WHERE driver_id = $1 ORDER BY seq`, string(driverID))
}

// Insert stores a booking created on the rider side.
func (s *PGStore) Insert(ctx context.Context, b Booking) error {
	var driverID *string
	if b.DriverID != nil {
		d := string(*b.DriverID)
		driverID = &d
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO book (
            id, user_id, driver_id,
            pickup_location, pickup_lat, pickup_lng,
            dropoff_location, dropoff_lat, dropoff_lng,
            ride_distance, ride_time, ride_price,
            is_pick_up, is_dropoff, created_at, user_weight,
            user_first_name, user_last_name, user_phone_number
        ) VALUES (
            $1, $2, $3,
            $4, $5, $6,
            $7, $8, $9,
            $10, $11, $12,
            $13, $14, $15, $16,
            $17, $18, $19
        )`,
		string(b.ID), string(b.UserID), driverID,
		b.PickupLocation, b.PickupCoords.Lat, b.PickupCoords.Lng,
		b.DropoffLocation, b.DropoffCoords.Lat, b.DropoffCoords.Lng,
		b.RideDistance, b.RideTime, b.RidePrice,
		b.IsPickUp, b.IsDropoff, b.Timestamp, b.UserWeight,
		b.UserFirstName, b.UserLastName, b.UserPhoneNumber,
	)
	if err != nil {
		return types.Network("postgres insert booking", err)
	}
	s.notify(ctx, b.ID)
	return nil
}

// Transact locks the row with SELECT ... FOR UPDATE so concurrent transitions on the
// same booking queue behind each other and each sees the committed state.
func (s *PGStore) Transact(ctx context.Context, id types.ID, fn TxFunc) (*Booking, error) {
	var result *Booking
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		cur, err := scanBooking(tx.QueryRow(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, string(id)))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		patch, err := fn(cur)
		if err != nil {
			return err
		}
		column, value, err := patchColumn(patch)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE book SET `+column+` = $1 WHERE id = $2`, value, string(id)); err != nil {
			return err
		}
		patch.Apply(cur)
		result = cur
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, types.Network("postgres booking transaction", err)
	}
	s.notify(ctx, id)
	return result, nil
}

// Watch emits the full list on subscription and again after every change notification.
func (s *PGStore) Watch(ctx context.Context) (<-chan []Booking, error) {
	var changes <-chan *redis.Message
	var ps *redis.PubSub
	if s.rdb != nil {
		ps = s.rdb.Subscribe(ctx, ChangesChannel)
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return nil, types.Network("redis subscribe", err)
		}
		changes = ps.Channel()
	}

	out := make(chan []Booking, 1)
	go func() {
		defer close(out)
		if ps != nil {
			defer ps.Close()
		}
		var tick <-chan time.Time
		if changes == nil {
			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			list, err := s.List(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("booking watch reload failed", "error", err)
				}
				return
			}
			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
			case <-tick:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *PGStore) query(ctx context.Context, sql string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, types.Network("postgres list bookings", err)
	}
	defer rows.Close()
	out := make([]Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, types.Network("postgres scan booking", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Network("postgres list bookings", err)
	}
	return out, nil
}

// notify is best-effort; watchers without the message catch up on the next change.
func (s *PGStore) notify(ctx context.Context, id types.ID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, ChangesChannel, string(id)).Err(); err != nil {
		s.logger.Warn("booking change notification failed", "booking_id", id, "error", err)
	}
}

func patchColumn(p Patch) (string, any, error) {
	switch p.Field {
	case FieldDriverID:
		id, ok := p.Value.(types.ID)
		if !ok {
			break
		}
		return "driver_id", string(id), nil
	case FieldIsPickUp:
		return "is_pick_up", p.Value, nil
	case FieldIsDropoff:
		return "is_dropoff", p.Value, nil
	}
	return "", nil, fmt.Errorf("%w: unsupported patch %s=%v", types.ErrInvalidInput, p.Field, p.Value)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var driverID *string
	err := row.Scan(
		&b.ID, &b.UserID, &driverID,
		&b.PickupLocation, &b.PickupCoords.Lat, &b.PickupCoords.Lng,
		&b.DropoffLocation, &b.DropoffCoords.Lat, &b.DropoffCoords.Lng,
		&b.RideDistance, &b.RideTime, &b.RidePrice,
		&b.IsPickUp, &b.IsDropoff, &b.Timestamp, &b.UserWeight,
		&b.UserFirstName, &b.UserLastName, &b.UserPhoneNumber,
	)
	if err != nil {
		return nil, err
	}
	if driverID != nil && *driverID != "" {
		d := types.ID(*driverID)
		b.DriverID = &d
	}
	return &b, nil
}
