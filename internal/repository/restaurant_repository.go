package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/model"
)

// RestaurantRepo encapsulates the queries on restaurants and the reviews
// shown on a restaurant's detail page.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// RestaurantDetail is a restaurant together with its reviews, newest first.
type RestaurantDetail struct {
	Restaurant model.Restaurant
	Reviews    []model.Review
}

// Create inserts a restaurant with a NULL rating and fills in its ID.
func (r *RestaurantRepo) Create(ctx context.Context, m *model.Restaurant) error {
	m.ID = uuid.NewString()
	m.AvgRating = sql.NullFloat64{}
	err := database.WithConn(ctx, r.db, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO restaurants (id, name, address, city, website_url, avg_rating)
			 VALUES (?, ?, ?, ?, ?, NULL)`,
			m.ID, m.Name, m.Address, m.City, m.WebsiteURL)
		return err
	})
	return translate("insert restaurant", err)
}

// GetDetail loads a restaurant and its reviews on one pooled connection.
// It returns ErrNotFound when no restaurant has the given id.
func (r *RestaurantRepo) GetDetail(ctx context.Context, id string) (*RestaurantDetail, error) {
	d := &RestaurantDetail{Reviews: []model.Review{}}
	err := database.WithConn(ctx, r.db, func(conn *sql.Conn) error {
		const q1 = `SELECT id, name, address, city, avg_rating, website_url, created_at
		            FROM restaurants WHERE id = ?`
		m := &d.Restaurant
		if err := conn.QueryRowContext(ctx, q1, id).
			Scan(&m.ID, &m.Name, &m.Address, &m.City, &m.AvgRating, &m.WebsiteURL, &m.CreatedAt); err != nil {
			return err
		}

		const q2 = `SELECT rv.id, rv.user_id, u.username, rv.review_text, rv.created_at
		            FROM reviews rv
		            JOIN users u ON u.id = rv.user_id
		            WHERE rv.restaurant_id = ?
		            ORDER BY rv.created_at DESC, rv.id DESC`
		rows, err := conn.QueryContext(ctx, q2, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rv := model.Review{RestaurantID: id}
			if err := rows.Scan(&rv.ID, &rv.UserID, &rv.Username, &rv.Text, &rv.CreatedAt); err != nil {
				return err
			}
			d.Reviews = append(d.Reviews, rv)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, translate("get restaurant detail", err)
	}
	return d, nil
}
