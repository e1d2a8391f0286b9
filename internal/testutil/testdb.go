package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tgienger/projecthub/internal/db"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// NewTestDB creates an in-memory SQLite database with the schema applied and
// a stepping clock installed. The database is closed when the test completes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	database.SetClock(NewClock().Now)
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUser registers an account and returns a context acting as it.
func NewTestUser(t *testing.T, database *db.DB, email string) (context.Context, string) {
	t.Helper()
	u, err := database.CreateUser(context.Background(), email, "not-a-real-hash")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return rowstore.WithUser(context.Background(), u.ID), u.ID
}

// Clock hands out strictly increasing times one second apart so that
// server-assigned timestamps order deterministically.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

func NewClock() *Clock {
	return &Clock{cur: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}
