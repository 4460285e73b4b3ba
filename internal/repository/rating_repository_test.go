package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/dinewise/internal/model"
)

func TestCreateRatingSecondAttemptConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO ratings`).
		WithArgs(sqlmock.AnyArg(), "u1", "r1", 4.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO ratings`).
		WithArgs(sqlmock.AnyArg(), "u1", "r1", 5.0).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_ratings_user_restaurant'"})

	repo := NewRatingRepo(db)
	first := &model.Rating{UserID: "u1", RestaurantID: "r1", Value: 4}
	require.NoError(t, repo.Create(context.Background(), first))
	assert.NotEmpty(t, first.ID)

	err = repo.Create(context.Background(), &model.Rating{UserID: "u1", RestaurantID: "r1", Value: 5})
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRatingUnknownRestaurant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO ratings`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err = NewRatingRepo(db).Create(context.Background(), &model.Rating{UserID: "u1", RestaurantID: "nope", Value: 3})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, db.Stats().InUse)
}

func TestCreateReviewUnknownRestaurant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO reviews`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err = NewReviewRepo(db).Create(context.Background(), &model.Review{UserID: "u1", RestaurantID: "nope", Text: "meh"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatesStampMicrosecondTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO reviews .* UTC_TIMESTAMP\(6\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO ratings .* UTC_TIMESTAMP\(6\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, NewReviewRepo(db).Create(ctx, &model.Review{UserID: "u1", RestaurantID: "r1", Text: "first"}))
	require.NoError(t, NewRatingRepo(db).Create(ctx, &model.Rating{UserID: "u1", RestaurantID: "r1", Value: 5}))
	require.NoError(t, mock.ExpectationsWereMet())
}
