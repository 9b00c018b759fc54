package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"geohash-service/models"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("venue not found")
	ErrDuplicate = errors.New("venue already exists")
)

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const venueColumns = `id, name, category, latitude, longitude, geohash`

// VenueRepository persists venues in postgres.
type VenueRepository struct {
	db *sql.DB
}

func NewVenueRepository(db *sql.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// Create inserts v and sets its ID. v.Geohash must already be computed.
func (r *VenueRepository) Create(ctx context.Context, v *models.Venue) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO venues (name, category, latitude, longitude, geohash) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		v.Name, v.Category, v.Latitude, v.Longitude, v.Geohash,
	).Scan(&v.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s at %s", ErrDuplicate, v.Name, v.Geohash)
		}
		return fmt.Errorf("inserting venue: %w", err)
	}
	return nil
}

func (r *VenueRepository) Get(ctx context.Context, id int64) (*models.Venue, error) {
	var v models.Venue
	err := r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id=$1`, id,
	).Scan(&v.ID, &v.Name, &v.Category, &v.Latitude, &v.Longitude, &v.Geohash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting venue %d: %w", id, err)
	}
	return &v, nil
}

func (r *VenueRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("deleting venue %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting venue %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// List returns every venue ordered by id.
func (r *VenueRepository) List(ctx context.Context) ([]models.Venue, error) {
	return r.query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
}

// ListByGeohashPrefix returns venues whose geohash starts with prefix, i.e.
// venues inside the prefix cell.
func (r *VenueRepository) ListByGeohashPrefix(ctx context.Context, prefix string) ([]models.Venue, error) {
	return r.query(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE geohash LIKE $1 || '%' ORDER BY id`, prefix)
}

// ListByName returns venues whose name contains name, ignoring case.
func (r *VenueRepository) ListByName(ctx context.Context, name string) ([]models.Venue, error) {
	return r.query(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE strpos(lower(name), lower($1)) > 0 ORDER BY id`, name)
}

func (r *VenueRepository) query(ctx context.Context, q string, args ...any) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying venues: %w", err)
	}
	defer rows.Close()

	var venues []models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Category, &v.Latitude, &v.Longitude, &v.Geohash); err != nil {
			return nil, fmt.Errorf("scanning venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating venues: %w", err)
	}
	return venues, nil
}
