package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/dinewise/internal/middleware"
    "github.com/iliyamo/dinewise/internal/model"
    "github.com/iliyamo/dinewise/internal/queue"
    "github.com/iliyamo/dinewise/internal/repository"
)

// Accepted bounds for rating_value.
const (
    minRating = 1.0
    maxRating = 5.0
)

// MemberHandler serves the writes that require a signed-in user.
type MemberHandler struct {
    Restaurants *repository.RestaurantRepo
    Ratings     *repository.RatingRepo
    Reviews     *repository.ReviewRepo
    Events      EventPublisher // optional

    inflight sync.WaitGroup // background publishes, see Drain
}

// NewMemberHandler constructs a MemberHandler and panics if a repository is nil.
func NewMemberHandler(rest *repository.RestaurantRepo, rat *repository.RatingRepo, rev *repository.ReviewRepo, ev EventPublisher) *MemberHandler {
    if rest == nil || rat == nil || rev == nil {
        panic("nil repository passed to NewMemberHandler")
    }
    return &MemberHandler{Restaurants: rest, Ratings: rat, Reviews: rev, Events: ev}
}

// publish hands ev to h.Events in the background.  A nil Events disables
// activity events.
func (h *MemberHandler) publish(log *logrus.Entry, ev queue.ActivityEvent) {
    if h.Events == nil {
        return
    }
    ev.OccurredAt = time.Now().UTC()
    h.inflight.Add(1)
    go func() {
        defer h.inflight.Done()
        ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
        defer cancel()
        if err := h.Events.Publish(ctx, ev); err != nil {
            log.WithError(err).WithField("event.type", ev.Type).Warn("activity event dropped")
        }
    }()
}

// Drain blocks until every background publish has finished or ctx is done.
// Call it after the HTTP server has stopped and before the publisher is
// closed.
func (h *MemberHandler) Drain(ctx context.Context) error {
    done := make(chan struct{})
    go func() {
        h.inflight.Wait()
        close(done)
    }()
    select {
    case <-done:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

type createRestaurantReq struct {
    Name       string `json:"name"`
    Address    string `json:"address"`
    City       string `json:"city"`
    WebsiteURL string `json:"website_url"`
}

type createRatingReq struct {
    RestaurantID string   `json:"restaurant_id"`
    RatingValue  *float64 `json:"rating_value"`
}

type createReviewReq struct {
    RestaurantID string `json:"restaurant_id"`
    ReviewText   string `json:"review_text"`
}

// CreateRestaurant: POST /api/restaurants.  name and city are required;
// avg_rating starts null.
func (h *MemberHandler) CreateRestaurant(c echo.Context) error {
    uid := middleware.CurrentUserID(c)
    var body createRestaurantReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    m := &model.Restaurant{
        Name:    strings.TrimSpace(body.Name),
        Address: strings.TrimSpace(body.Address),
        City:    strings.TrimSpace(body.City),
    }
    if m.Name == "" || m.City == "" {
        return c.JSON(http.StatusBadRequest, errMissingFields)
    }
    if w := strings.TrimSpace(body.WebsiteURL); w != "" {
        m.WebsiteURL = sql.NullString{String: w, Valid: true}
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Restaurants.Create(ctx, m); err != nil {
        return storeError(c, err, "create restaurant", logrus.Fields{"user_id": uid, "city": m.City},
            "not found", "restaurant already exists")
    }
    h.publish(middleware.Logger(c), queue.ActivityEvent{
        Type: queue.RestaurantCreated, UserID: uid, RestaurantID: m.ID, EntityID: m.ID,
    })
    return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": m.ID})
}

// CreateRating: POST /api/ratings.  A second rating of the same restaurant
// by the same user is a 409.
func (h *MemberHandler) CreateRating(c echo.Context) error {
    uid := middleware.CurrentUserID(c)
    var body createRatingReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    body.RestaurantID = strings.TrimSpace(body.RestaurantID)
    if body.RestaurantID == "" || body.RatingValue == nil {
        return c.JSON(http.StatusBadRequest, errMissingFields)
    }
    v := *body.RatingValue
    if v < minRating || v > maxRating {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating_value must be between 1 and 5"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    m := &model.Rating{UserID: uid, RestaurantID: body.RestaurantID, Value: v}
    if err := h.Ratings.Create(ctx, m); err != nil {
        return storeError(c, err, "create rating", logrus.Fields{"user_id": uid, "restaurant_id": m.RestaurantID},
            "restaurant not found", "You have already rated this restaurant")
    }
    h.publish(middleware.Logger(c), queue.ActivityEvent{
        Type: queue.RatingCreated, UserID: uid, RestaurantID: m.RestaurantID, EntityID: m.ID, RatingValue: &v,
    })
    return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// CreateReview: POST /api/reviews.  Users may review a restaurant many times.
func (h *MemberHandler) CreateReview(c echo.Context) error {
    uid := middleware.CurrentUserID(c)
    var body createReviewReq
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    body.RestaurantID = strings.TrimSpace(body.RestaurantID)
    if body.RestaurantID == "" || strings.TrimSpace(body.ReviewText) == "" {
        return c.JSON(http.StatusBadRequest, errMissingFields)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    m := &model.Review{UserID: uid, RestaurantID: body.RestaurantID, Text: body.ReviewText}
    if err := h.Reviews.Create(ctx, m); err != nil {
        return storeError(c, err, "create review", logrus.Fields{"user_id": uid, "restaurant_id": m.RestaurantID},
            "restaurant not found", "")
    }
    h.publish(middleware.Logger(c), queue.ActivityEvent{
        Type: queue.ReviewCreated, UserID: uid, RestaurantID: m.RestaurantID, EntityID: m.ID,
    })
    return c.JSON(http.StatusCreated, echo.Map{"success": true})
}
