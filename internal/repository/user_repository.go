package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/dinewise/internal/database"
	"github.com/iliyamo/dinewise/internal/model"
	"github.com/iliyamo/dinewise/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password, inserts the user and returns it.  A duplicate
// email yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	}
	err = database.WithConn(ctx, r.DB, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
			u.ID, u.Username, u.Email, u.PasswordHash)
		return err
	})
	if err != nil {
		return model.User{}, translate("insert user", err)
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "select user by email",
		"SELECT id,username,email,password_hash,created_at FROM users WHERE email=? LIMIT 1",
		NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "select user by id",
		"SELECT id,username,email,password_hash,created_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, op, q string, arg any) (model.User, error) {
	var u model.User
	err := database.WithConn(ctx, r.DB, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, q, arg).
			Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})
	if err != nil {
		return model.User{}, translate(op, err)
	}
	return u, nil
}
