// README: Booking store backed by the Firestore "book" collection.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kargo/internal/types"
)

const collection = "book"

type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

func NewFirestoreStore(client *firestore.Client, logger *slog.Logger) *FirestoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FirestoreStore{client: client, logger: logger}
}

func (s *FirestoreStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	snap, err := s.client.Collection(collection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Network("firestore get booking", err)
	}
	b, err := decodeBooking(snap.Ref.ID, snap.Data())
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]Booking, error) {
	docs, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, types.Network("firestore list bookings", err)
	}
	return s.decodeAll(docs), nil
}

func (s *FirestoreStore) ListByDriver(ctx context.Context, driverID types.ID) ([]Booking, error) {
	docs, err := s.client.Collection(collection).
		Where(string(FieldDriverID), "==", string(driverID)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, types.Network("firestore list driver bookings", err)
	}
	return s.decodeAll(docs), nil
}

// Watch relays collection snapshots until ctx ends or the listener fails.
func (s *FirestoreStore) Watch(ctx context.Context) (<-chan []Booking, error) {
	it := s.client.Collection(collection).Snapshots(ctx)
	out := make(chan []Booking, 1)
	go func() {
		defer close(out)
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if !errors.Is(err, iterator.Done) && status.Code(err) != codes.Canceled && ctx.Err() == nil {
					s.logger.Warn("booking snapshot listener stopped", "error", err)
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				s.logger.Warn("booking snapshot read failed", "error", err)
				return
			}
			select {
			case out <- s.decodeAll(docs):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Transact runs fn inside a Firestore transaction; Firestore retries the function when
// the document changes between read and commit, so fn always sees the committed state.
func (s *FirestoreStore) Transact(ctx context.Context, id types.ID, fn TxFunc) (*Booking, error) {
	ref := s.client.Collection(collection).Doc(string(id))
	var result Booking
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decodeBooking(ref.ID, snap.Data())
		if err != nil {
			return err
		}
		patch, err := fn(&cur)
		if err != nil {
			return err
		}
		value := patch.Value
		if id, ok := value.(types.ID); ok {
			value = string(id)
		}
		if err := tx.Update(ref, []firestore.Update{{Path: string(patch.Field), Value: value}}); err != nil {
			return err
		}
		patch.Apply(&cur)
		result = cur
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, types.Network("firestore booking transaction", err)
	}
	return &result, nil
}

func (s *FirestoreStore) decodeAll(docs []*firestore.DocumentSnapshot) []Booking {
	out := make([]Booking, 0, len(docs))
	for _, d := range docs {
		b, err := decodeBooking(d.Ref.ID, d.Data())
		if err != nil {
			s.logger.Warn("skipping undecodable booking", "booking_id", d.Ref.ID, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

func isDomainError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrAlreadyClaimed, ErrInvalidState, ErrNotAssigned, types.ErrInvalidDocument, types.ErrInvalidInput} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeBooking(id string, data map[string]any) (Booking, error) {
	d := types.Doc(data)
	b := Booking{ID: types.ID(id)}
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	userID, err := d.String("userId")
	collect(err)
	b.UserID = types.ID(userID)
	b.DriverID, err = d.OptionalID(string(FieldDriverID))
	collect(err)
	b.PickupLocation, err = d.String("pickupLocation")
	collect(err)
	b.PickupCoords, err = d.Point("pickupCoords")
	collect(err)
	b.DropoffLocation, err = d.String("dropoffLocation")
	collect(err)
	b.DropoffCoords, err = d.Point("dropoffCoords")
	collect(err)
	b.RideDistance, err = d.String("rideDistance")
	collect(err)
	b.RideTime, err = d.String("rideTime")
	collect(err)
	b.RidePrice, err = d.String("ridePrice")
	collect(err)
	b.IsPickUp, err = d.Bool(string(FieldIsPickUp))
	collect(err)
	b.IsDropoff, err = d.Bool(string(FieldIsDropoff))
	collect(err)
	b.Timestamp, err = d.Time("timestamp")
	collect(err)
	b.UserWeight, err = d.Int("userWeight")
	collect(err)
	b.UserFirstName, err = d.String("userfirstName")
	collect(err)
	b.UserLastName, err = d.String("userlastName")
	collect(err)
	b.UserPhoneNumber, err = d.String("userPhoneNumber")
	collect(err)

	if len(errs) > 0 {
		return Booking{}, fmt.Errorf("booking %s: %w", id, errors.Join(errs...))
	}
	if b.Timestamp.IsZero() {
		return Booking{}, fmt.Errorf("booking %s: %w: missing timestamp", id, types.ErrInvalidDocument)
	}
	return b, nil
}
