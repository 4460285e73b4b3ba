package model

import "time"

// Review is free text a user wrote about a restaurant.  Unlike ratings, a
// user may post any number of reviews for the same restaurant.
type Review struct {
    ID           string    // reviews.id
    UserID       string    // reviews.user_id
    RestaurantID string    // reviews.restaurant_id
    Text         string    // reviews.review_text
    CreatedAt    time.Time // reviews.created_at

    // Username is joined from users when reviews are listed.
    Username string
}
