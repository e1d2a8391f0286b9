package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// CreateUser registers an account. A duplicate email is a query error.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	now := db.now()
	u := models.User{
		ID:        schema.NewID(),
		Email:     strings.TrimSpace(email),
		CreatedAt: now.UTC(),
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, passwordHash, schema.FormatTime(now))
	if err != nil {
		return models.User{}, wrapErr("creating user", err)
	}
	return u, nil
}

// UserByEmail returns the account and its password hash
func (db *DB) UserByEmail(ctx context.Context, email string) (models.User, string, error) {
	row := db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = ?", strings.TrimSpace(email))
	var u models.User
	var hash, created string
	if err := row.Scan(&u.ID, &u.Email, &hash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", fmt.Errorf("%w: user %s", rowstore.ErrNotFound, email)
		}
		return models.User{}, "", wrapErr("getting user", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return u, hash, nil
}

func (db *DB) UserByID(ctx context.Context, id string) (models.User, error) {
	row := db.QueryRowContext(ctx, "SELECT id, email, created_at FROM users WHERE id = ?", id)
	var u models.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: user %s", rowstore.ErrNotFound, id)
		}
		return models.User{}, wrapErr("getting user", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return u, nil
}
