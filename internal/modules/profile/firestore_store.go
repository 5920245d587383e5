// README: Profile store backed by the Firestore "drivers" and "users" collections.
package profile

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kargo/internal/types"
)

const (
	driversCollection = "drivers"
	ridersCollection  = "users"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Driver(ctx context.Context, id types.ID) (*Driver, error) {
	data, err := s.get(ctx, driversCollection, id)
	if err != nil {
		return nil, err
	}
	return decodeDriver(id, data)
}

func (s *FirestoreStore) Rider(ctx context.Context, id types.ID) (*Rider, error) {
	data, err := s.get(ctx, ridersCollection, id)
	if err != nil {
		return nil, err
	}
	d := types.Doc(data)
	r := &Rider{ID: id}
	var errs []error
	for field, dst := range map[string]*string{
		"firstName":      &r.FirstName,
		"lastName":       &r.LastName,
		"phoneNumber":    &r.PhoneNumber,
		"profilePicture": &r.ProfilePicture,
	} {
		v, err := d.String(field)
		*dst = v
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("rider %s: %w", id, err)
	}
	return r, nil
}

func (s *FirestoreStore) UpdateDriver(ctx context.Context, id types.ID, info DriverInfo) error {
	_, err := s.client.Collection(driversCollection).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "firstName", Value: info.FirstName},
		{Path: "lastName", Value: info.LastName},
		{Path: "phoneNumber", Value: info.PhoneNumber},
		{Path: "motorcycleModel", Value: info.MotorcycleModel},
		{Path: "motorcycleRegNo", Value: info.MotorcycleRegNo},
		{Path: "weight", Value: info.Weight},
		{Path: "maxLoad", Value: info.MaxLoad},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return types.Network("firestore update driver", err)
	}
	return nil
}

func (s *FirestoreStore) SetProfilePicture(ctx context.Context, id types.ID, url string) error {
	_, err := s.client.Collection(driversCollection).Doc(string(id)).
		Set(ctx, map[string]any{"profilePicture": url}, firestore.MergeAll)
	if err != nil {
		return types.Network("firestore set profile picture", err)
	}
	return nil
}

func (s *FirestoreStore) get(ctx context.Context, collection string, id types.ID) (map[string]any, error) {
	snap, err := s.client.Collection(collection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Network("firestore get "+collection, err)
	}
	return snap.Data(), nil
}

func decodeDriver(id types.ID, data map[string]any) (*Driver, error) {
	d := types.Doc(data)
	out := &Driver{ID: id}
	var errs []error
	for field, dst := range map[string]*string{
		"firstName":       &out.FirstName,
		"lastName":        &out.LastName,
		"phoneNumber":     &out.PhoneNumber,
		"motorcycleModel": &out.MotorcycleModel,
		"motorcycleRegNo": &out.MotorcycleRegNo,
		"profilePicture":  &out.ProfilePicture,
	} {
		v, err := d.String(field)
		*dst = v
		errs = append(errs, err)
	}
	var err error
	out.Weight, err = d.Int("weight")
	errs = append(errs, err)
	out.MaxLoad, err = d.Int("maxLoad")
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("driver %s: %w", id, err)
	}
	return out, nil
}
