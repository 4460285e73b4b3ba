// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file holds the public restaurant reads.  Store rows are
// copied into fixed response types so that the JSON field names never
// depend on column naming.
package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/dinewise/internal/model"
    "github.com/iliyamo/dinewise/internal/repository"
)

// PublicHandler serves the unauthenticated restaurant reads.
type PublicHandler struct {
    Restaurants *repository.RestaurantRepo
}

func NewPublicHandler(r *repository.RestaurantRepo) *PublicHandler {
    return &PublicHandler{Restaurants: r}
}

// RestaurantSummary is the public shape of a restaurant.  AvgRating and
// WebsiteURL are null when unset.
type RestaurantSummary struct {
    ID         string   `json:"id"`
    Name       string   `json:"name"`
    Address    string   `json:"address"`
    City       string   `json:"city"`
    AvgRating  *float64 `json:"avg_rating"`
    WebsiteURL *string  `json:"website_url"`
}

// PublicReview is one review on the detail page.
type PublicReview struct {
    ID         string    `json:"id"`
    UserID     string    `json:"user_id"`
    Username   string    `json:"username"`
    ReviewText string    `json:"review_text"`
    CreatedAt  time.Time `json:"created_at"`
}

// RestaurantDetailResp is the body of GET /api/restaurants/:id.
type RestaurantDetailResp struct {
    Restaurant RestaurantSummary `json:"restaurant"`
    Reviews    []PublicReview    `json:"reviews"`
}

func toSummary(m model.Restaurant) RestaurantSummary {
    s := RestaurantSummary{ID: m.ID, Name: m.Name, Address: m.Address, City: m.City}
    if m.AvgRating.Valid {
        v := m.AvgRating.Float64
        s.AvgRating = &v
    }
    if m.WebsiteURL.Valid {
        v := m.WebsiteURL.String
        s.WebsiteURL = &v
    }
    return s
}

// positiveParam parses an optional positive integer query parameter.  An
// absent parameter yields def; anything else that is not a positive integer
// is rejected.
func positiveParam(c echo.Context, name string, def int) (int, bool) {
    raw := strings.TrimSpace(c.QueryParam(name))
    if raw == "" {
        return def, true
    }
    n, err := strconv.Atoi(raw)
    if err != nil || n < 1 {
        return 0, false
    }
    return n, true
}

// ListRestaurants: GET /api/restaurants?city=&cuisine=&page=&limit=
// Returns a bare JSON array ranked by rating.  limit is capped at
// repository.MaxLimit.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
    page, ok := positiveParam(c, "page", repository.DefaultPage)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be a positive integer"})
    }
    limit, ok := positiveParam(c, "limit", repository.DefaultLimit)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
    }
    if limit > repository.MaxLimit {
        limit = repository.MaxLimit
    }
    q := repository.RestaurantSearchQuery{
        City:    strings.TrimSpace(c.QueryParam("city")),
        Cuisine: strings.TrimSpace(c.QueryParam("cuisine")),
        Page:    page,
        Limit:   limit,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rows, err := h.Restaurants.Search(ctx, q)
    if err != nil {
        return storeError(c, err, "list restaurants", logrus.Fields{
            "city": q.City, "cuisine": q.Cuisine, "page": q.Page, "limit": q.Limit,
        }, "not found", "")
    }
    out := make([]RestaurantSummary, 0, len(rows))
    for _, m := range rows {
        out = append(out, toSummary(m))
    }
    return c.JSON(http.StatusOK, out)
}

// GetRestaurant: GET /api/restaurants/:id.  404 when the id is unknown.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    d, err := h.Restaurants.GetDetail(ctx, id)
    if err != nil {
        return storeError(c, err, "get restaurant", logrus.Fields{"restaurant_id": id},
            "restaurant not found", "")
    }
    resp := RestaurantDetailResp{
        Restaurant: toSummary(d.Restaurant),
        Reviews:    make([]PublicReview, 0, len(d.Reviews)),
    }
    for _, rv := range d.Reviews {
        resp.Reviews = append(resp.Reviews, PublicReview{
            ID: rv.ID, UserID: rv.UserID, Username: rv.Username, ReviewText: rv.Text, CreatedAt: rv.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, resp)
}
