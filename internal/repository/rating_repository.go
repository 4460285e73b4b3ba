package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/model"
)

// RatingRepo persists ratings.  The (user_id, restaurant_id) unique index
// is the only guard against double rating; concurrent submissions race on
// it and the loser gets ErrConflict.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts the rating and fills in its ID.  ErrConflict means the user
// already rated the restaurant; ErrNotFound means the restaurant or user
// does not exist.
func (r *RatingRepo) Create(ctx context.Context, m *model.Rating) error {
	m.ID = uuid.NewString()
	err := database.WithConn(ctx, r.db, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO ratings (id, user_id, restaurant_id, rating_value, created_at)
			 VALUES (?, ?, ?, ?, UTC_TIMESTAMP(6))`,
			m.ID, m.UserID, m.RestaurantID, m.Value)
		return err
	})
	return translate("insert rating", err)
}
