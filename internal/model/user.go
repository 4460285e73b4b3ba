package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Handlers never serialize it directly; they copy the public
// fields into their own response types.
//
// Fields:
//  ID           – opaque identifier (UUID string).
//  Username     – display name.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hash; the plaintext is never stored.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           string    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
}
