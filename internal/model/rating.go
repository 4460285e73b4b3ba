package model

import "time"

// Rating is one user's score for one restaurant.  The store holds a unique
// index on (user_id, restaurant_id), so a user rates a restaurant once.
type Rating struct {
    ID           string    // ratings.id
    UserID       string    // ratings.user_id
    RestaurantID string    // ratings.restaurant_id
    Value        float64   // ratings.rating_value
    CreatedAt    time.Time // ratings.created_at
}
