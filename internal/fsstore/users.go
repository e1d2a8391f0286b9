package fsstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

type userDoc struct {
	Email        string `firestore:"email"`
	EmailLower   string `firestore:"email_lower"`
	PasswordHash string `firestore:"password_hash"`
	CreatedAt    string `firestore:"created_at"`
}

func (d userDoc) user(id string) models.User {
	created, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	return models.User{ID: id, Email: d.Email, CreatedAt: created}
}

// CreateUser registers an account. Emails are unique ignoring case.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	email = strings.TrimSpace(email)
	id := schema.NewID()
	doc := userDoc{
		Email:        email,
		EmailLower:   strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    schema.FormatTime(s.now()),
	}
	users := s.client.Collection(usersCollection)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email_lower", "==", doc.EmailLower).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: email already registered", rowstore.ErrQuery)
		}
		return tx.Create(users.Doc(id), doc)
	})
	if err != nil {
		return models.User{}, wrapErr("creating user", err)
	}
	return doc.user(id), nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, string, error) {
	snaps, err := s.client.Collection(usersCollection).
		Where("email_lower", "==", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return models.User{}, "", wrapErr("getting user", err)
	}
	if len(snaps) == 0 {
		return models.User{}, "", fmt.Errorf("%w: user %s", rowstore.ErrNotFound, email)
	}
	var doc userDoc
	if err := snaps[0].DataTo(&doc); err != nil {
		return models.User{}, "", wrapErr("decoding user", err)
	}
	return doc.user(snaps[0].Ref.ID), doc.PasswordHash, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.User{}, fmt.Errorf("%w: user %s", rowstore.ErrNotFound, id)
	}
	if err != nil {
		return models.User{}, wrapErr("getting user", err)
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return models.User{}, wrapErr("decoding user", err)
	}
	return doc.user(id), nil
}
