package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/model"
)

type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts the review and fills in its ID.
func (r *ReviewRepo) Create(ctx context.Context, m *model.Review) error {
	m.ID = uuid.NewString()
	err := database.WithConn(ctx, r.db, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO reviews (id, user_id, restaurant_id, review_text, created_at)
			 VALUES (?, ?, ?, ?, UTC_TIMESTAMP(6))`,
			m.ID, m.UserID, m.RestaurantID, m.Text)
		return err
	})
	return translate("insert review", err)
}
