// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// ActivityQueueName is the durable queue carrying ActivityEvent messages.
const ActivityQueueName = "dinewise.activity"

// Activity event types.
const (
    RestaurantCreated = "restaurant.created"
    RatingCreated     = "rating.created"
    ReviewCreated     = "review.created"
)

// ActivityEvent is published after a successful write.  It carries ids and
// the submitted value only; review text and user credentials stay out of
// the broker.
type ActivityEvent struct {
    Type         string    `json:"type"`
    UserID       string    `json:"user_id"`
    RestaurantID string    `json:"restaurant_id"`
    EntityID     string    `json:"entity_id"`
    RatingValue  *float64  `json:"rating_value,omitempty"`
    OccurredAt   time.Time `json:"occurred_at"`
}
