// README: Profile store backed by PostgreSQL (drivers and users tables).
package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kargo/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Driver(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, first_name, last_name, phone_number,
               motorcycle_model, motorcycle_reg_no, weight, max_load, profile_picture
        FROM drivers
        WHERE id = $1`, string(id),
	)
	var d Driver
	err := row.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.PhoneNumber,
		&d.MotorcycleModel, &d.MotorcycleRegNo, &d.Weight, &d.MaxLoad, &d.ProfilePicture,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Network("postgres get driver", err)
	}
	return &d, nil
}

func (s *PGStore) Rider(ctx context.Context, id types.ID) (*Rider, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, first_name, last_name, phone_number, profile_picture
        FROM users
        WHERE id = $1`, string(id),
	)
	var r Rider
	err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.PhoneNumber, &r.ProfilePicture)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Network("postgres get rider", err)
	}
	return &r, nil
}

func (s *PGStore) UpdateDriver(ctx context.Context, id types.ID, info DriverInfo) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET first_name = $1,
            last_name = $2,
            phone_number = $3,
            motorcycle_model = $4,
            motorcycle_reg_no = $5,
            weight = $6,
            max_load = $7
        WHERE id = $8`,
		info.FirstName, info.LastName, info.PhoneNumber,
		info.MotorcycleModel, info.MotorcycleRegNo, info.Weight, info.MaxLoad,
		string(id),
	)
	if err != nil {
		return types.Network("postgres update driver", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) SetProfilePicture(ctx context.Context, id types.ID, url string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (id, profile_picture) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET profile_picture = EXCLUDED.profile_picture`,
		string(id), url,
	)
	if err != nil {
		return types.Network("postgres set profile picture", err)
	}
	return nil
}

// InsertDriver creates a driver row; registration happens outside this service.
func (s *PGStore) InsertDriver(ctx context.Context, d Driver) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (
            id, first_name, last_name, phone_number,
            motorcycle_model, motorcycle_reg_no, weight, max_load, profile_picture
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(d.ID), d.FirstName, d.LastName, d.PhoneNumber,
		d.MotorcycleModel, d.MotorcycleRegNo, d.Weight, d.MaxLoad, d.ProfilePicture,
	)
	if err != nil {
		return types.Network("postgres insert driver", err)
	}
	return nil
}
