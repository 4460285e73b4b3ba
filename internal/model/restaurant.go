package model

import (
    "database/sql"
    "time"
)

// Restaurant represents a row in the `restaurants` table.  AvgRating is
// NULL until something populates it; no code path in this service does.
type Restaurant struct {
    ID         string          // restaurants.id
    Name       string          // restaurants.name
    Address    string          // restaurants.address
    City       string          // restaurants.city
    AvgRating  sql.NullFloat64 // restaurants.avg_rating (nullable)
    WebsiteURL sql.NullString  // restaurants.website_url (nullable)
    CreatedAt  time.Time       // restaurants.created_at
}

