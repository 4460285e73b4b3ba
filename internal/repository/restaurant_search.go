package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/model"
)

// Paging defaults and the hard ceiling on page size.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// RestaurantSearchQuery defines the filters and the page window for a
// restaurant listing.  Empty City or Cuisine means "no filter".
type RestaurantSearchQuery struct {
	City    string
	Cuisine string
	Page    int
	Limit   int
}

// Window returns the 1-based, inclusive rank range covered by the page.
func (q RestaurantSearchQuery) Window() (start, end int) {
	start = (q.Page-1)*q.Limit + 1
	end = q.Page * q.Limit
	return start, end
}

func (q RestaurantSearchQuery) normalized() RestaurantSearchQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// searchSQL ranks every matching restaurant by rating, highest first, with
// unrated restaurants counted as 0.  The id breaks ties so that the same
// restaurant always lands on the same page.
const searchSQL = `SELECT id, name, address, city, avg_rating, website_url
	FROM (
		SELECT r.id, r.name, r.address, r.city, r.avg_rating, r.website_url,
			ROW_NUMBER() OVER (ORDER BY COALESCE(r.avg_rating, 0) DESC, r.id ASC) AS rn
		FROM restaurants r
		WHERE %s
	) ranked
	WHERE rn BETWEEN ? AND ?
	ORDER BY rn`

const cuisineFilter = `EXISTS (
			SELECT 1
			FROM restaurant_categories rc
			JOIN categories c ON c.id = rc.category_id
			WHERE rc.restaurant_id = r.id
			  AND LOWER(c.name) = LOWER(?)
		)`

// buildSearch returns the statement and bind arguments for q.
func buildSearch(q RestaurantSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}
	if q.City != "" {
		where = append(where, "r.city = ?")
		args = append(args, q.City)
	}
	if q.Cuisine != "" {
		where = append(where, cuisineFilter)
		args = append(args, q.Cuisine)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	start, end := q.Window()
	args = append(args, start, end)
	return fmt.Sprintf(searchSQL, cond), args
}

// Search returns one page of restaurants in rank order.
func (r *RestaurantRepo) Search(ctx context.Context, q RestaurantSearchQuery) ([]model.Restaurant, error) {
	q = q.normalized()
	stmt, args := buildSearch(q)

	out := make([]model.Restaurant, 0, q.Limit)
	err := database.WithConn(ctx, r.db, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, stmt, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m model.Restaurant
			if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.City, &m.AvgRating, &m.WebsiteURL); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, translate("search restaurants", err)
	}
	return out, nil
}
