package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var restaurantCols = []string{"id", "name", "address", "city", "avg_rating", "website_url"}

func TestWindowPagesAreContiguous(t *testing.T) {
	for _, limit := range []int{1, 2, 7, 20, 100} {
		next := 1
		for page := 1; page <= 10; page++ {
			start, end := RestaurantSearchQuery{Page: page, Limit: limit}.Window()
			assert.Equal(t, next, start, "limit %d page %d", limit, page)
			assert.Equal(t, start+limit-1, end)
			next = end + 1
		}
		assert.Equal(t, 10*limit+1, next)
	}
}

func TestNormalizedClampsLimit(t *testing.T) {
	q := RestaurantSearchQuery{Page: 0, Limit: 1000}.normalized()
	assert.Equal(t, DefaultPage, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)

	q = RestaurantSearchQuery{Page: 3, Limit: -5}.normalized()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestBuildSearch(t *testing.T) {
	stmt, args := buildSearch(RestaurantSearchQuery{Page: 2, Limit: 10})
	assert.Contains(t, stmt, "WHERE 1=1")
	assert.Contains(t, stmt, "ORDER BY COALESCE(r.avg_rating, 0) DESC, r.id ASC")
	assert.Equal(t, []any{11, 20}, args)

	stmt, args = buildSearch(RestaurantSearchQuery{City: "Dehradun", Cuisine: "Italian", Page: 1, Limit: 5})
	assert.Contains(t, stmt, "r.city = ?")
	assert.Contains(t, stmt, "LOWER(c.name) = LOWER(?)")
	assert.Equal(t, []any{"Dehradun", "Italian", 1, 5}, args)
}

func TestSearchReturnsRankedPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER`).
		WithArgs("Dehradun", 1, 2).
		WillReturnRows(sqlmock.NewRows(restaurantCols).
			AddRow("r1", "Doon Darbar", "Rajpur Rd", "Dehradun", 4.6, "https://doon.example").
			AddRow("r3", "Kalsang", "Astley Hall", "Dehradun", 4.4, nil))

	rows, err := NewRestaurantRepo(db).Search(context.Background(), RestaurantSearchQuery{City: "Dehradun", Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0].ID)
	assert.InDelta(t, 4.6, rows[0].AvgRating.Float64, 1e-9)
	assert.True(t, rows[0].WebsiteURL.Valid)
	assert.Equal(t, "r3", rows[1].ID)
	assert.False(t, rows[1].WebsiteURL.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmptyResultIsNotNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER`).
		WithArgs(41, 60).
		WillReturnRows(sqlmock.NewRows(restaurantCols))

	rows, err := NewRestaurantRepo(db).Search(context.Background(), RestaurantSearchQuery{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchStoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`ROW_NUMBER\(\) OVER`).WillReturnError(assert.AnError)

	_, err = NewRestaurantRepo(db).Search(context.Background(), RestaurantSearchQuery{Page: 1, Limit: 20})
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, db.Stats().InUse)
}
