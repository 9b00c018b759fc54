package database

import (
	"context"
	"regexp"
	"testing"

	"geohash-service/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name", "category", "latitude", "longitude", "geohash"}

func newRepo(t *testing.T) (*VenueRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewVenueRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)
	v := &models.Venue{Name: "Crypto.com Arena", Category: "sports", Latitude: 34.043, Longitude: -118.2673, Geohash: "9q5cs4m"}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO venues`)).
		WithArgs(v.Name, v.Category, v.Latitude, v.Longitude, v.Geohash).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, int64(42), v.ID)
}

func TestCreateDuplicate(t *testing.T) {
	repo, mock := newRepo(t)
	v := &models.Venue{Name: "Crypto.com Arena", Geohash: "9q5cs4m"}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO venues`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), v)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGet(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM venues WHERE id=$1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "Hollywood Bowl", "music", 34.103, -118.339, "9q5cfxx"))

	v, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Hollywood Bowl", v.Name)
	assert.Equal(t, "9q5cfxx", v.Geohash)
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM venues WHERE id=$1`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM venues WHERE id=$1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM venues WHERE id=$1`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}

func TestListByGeohashPrefix(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE geohash LIKE $1 || '%'`)).
		WithArgs("9q5c").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "Crypto.com Arena", "sports", 34.043, -118.2673, "9q5cs4m").
			AddRow(2, "Dodger Stadium", "sports", 34.0739, -118.24, "9q5cv2r"))

	venues, err := repo.ListByGeohashPrefix(context.Background(), "9q5c")
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, int64(2), venues[1].ID)
}

func TestListByName(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE strpos(lower(name), lower($1)) > 0 ORDER BY id`)).
		WithArgs("stadium").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "BMO Stadium", "sports", 34.0141, -118.2879, "9q5cs21").
			AddRow(3, "Dodger Stadium", "sports", 34.0739, -118.24, "9q5cv6u"))

	venues, err := repo.ListByName(context.Background(), "stadium")
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, "Dodger Stadium", venues[1].Name)
}

func TestList(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM venues ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(columns))

	venues, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, venues)
}
