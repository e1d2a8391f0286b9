// Package fsstore keeps rows in Cloud Firestore, one collection per table.
// Child documents carry their owner's id so every read can be scoped by a
// single equality filter; project deletes cascade in the same transaction.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// ownerField is denormalised onto every document.
const ownerField = "owner_id"

const usersCollection = "users"

// Store implements rowstore.Client and auth.AccountStore on Firestore.
type Store struct {
	client *firestore.Client
	now    func() time.Time
	logger *slog.Logger
}

var _ rowstore.Client = (*Store)(nil)

func New(client *firestore.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, now: time.Now, logger: logger.With("component", "fsstore")}
}

// Connect opens a Firestore client for projectID. An empty credentialsFile
// uses application default credentials (or the emulator when
// FIRESTORE_EMULATOR_HOST is set).
func Connect(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firestore client: %w", err)
	}
	return New(client, logger), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Select returns the acting user's documents matching q. Equality filters run
// in Firestore; inequality filters and ordering are applied here so no
// composite indexes are needed.
func (s *Store) Select(ctx context.Context, table string, q rowstore.Query) ([]rowstore.Row, error) {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return nil, err
	}
	if err := t.CheckQuery(q); err != nil {
		return nil, err
	}

	query := s.client.Collection(t.Name).Where(ownerField, "==", userID)
	var rest []rowstore.Filter
	for _, f := range q.Filters {
		if f.Op == rowstore.OpEq && f.Value != nil {
			query = query.Where(f.Column, "==", f.Value)
			continue
		}
		rest = append(rest, f)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapErr("selecting "+table, err)
	}
	rows := make([]rowstore.Row, 0, len(snaps))
	for _, snap := range snaps {
		row := toRow(t, snap)
		if matches(row, rest) {
			rows = append(rows, row)
		}
	}
	sortRows(rows, q.Order)
	return rows, nil
}

// Insert creates a document for the acting user.
func (s *Store) Insert(ctx context.Context, table string, row rowstore.Row) (rowstore.Row, error) {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return nil, err
	}
	out, err := t.PrepareInsert(row, userID, s.now())
	if err != nil {
		return nil, err
	}
	ref := s.client.Collection(t.Name).Doc(out["id"].(string))

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if t.ParentColumn != "" {
			parent, _ := out[t.ParentColumn].(string)
			if err := s.checkProject(tx, parent, userID); err != nil {
				return err
			}
		}
		if seq := t.SequenceColumn; seq != "" {
			if _, ok := out[seq]; !ok {
				siblings, err := tx.Documents(s.client.Collection(t.Name).
					Where(t.ParentColumn, "==", out[t.ParentColumn])).GetAll()
				if err != nil {
					return err
				}
				out[seq] = nextSequence(siblings, seq)
			}
		}
		doc := copyRow(out)
		doc[ownerField] = userID
		return tx.Create(ref, map[string]interface{}(doc))
	})
	if err != nil {
		return nil, wrapErr("inserting into "+table, err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, table, id string, fields rowstore.Row) error {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return err
	}
	set, err := t.PrepareUpdate(fields, s.now())
	if err != nil {
		return err
	}

	ref := s.client.Collection(t.Name).Doc(id)
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkOwned(tx, ref, table, userID); err != nil {
			return err
		}
		updates := make([]firestore.Update, 0, len(set))
		for col, v := range set {
			updates = append(updates, firestore.Update{Path: col, Value: v})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return wrapErr("updating "+table, err)
	}
	return nil
}

// Delete removes the document. Deleting a project also deletes its tasks and
// notes.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return err
	}

	ref := s.client.Collection(t.Name).Doc(id)
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := s.checkOwned(tx, ref, table, userID); err != nil {
			return err
		}
		var children []*firestore.DocumentRef
		if t.Name == schema.Projects {
			for _, child := range []string{schema.Tasks, schema.Notes} {
				snaps, err := tx.Documents(s.client.Collection(child).
					Where("project_id", "==", id).
					Where(ownerField, "==", userID)).GetAll()
				if err != nil {
					return err
				}
				for _, snap := range snaps {
					children = append(children, snap.Ref)
				}
			}
		}
		for _, child := range children {
			if err := tx.Delete(child); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return wrapErr("deleting from "+table, err)
	}
	s.logger.Debug("deleted", "table", table, "id", id)
	return nil
}

func (s *Store) checkProject(tx *firestore.Transaction, projectID, userID string) error {
	snap, err := tx.Get(s.client.Collection(schema.Projects).Doc(projectID))
	if status.Code(err) == codes.NotFound || (err == nil && snap.Data()["user_id"] != userID) {
		return fmt.Errorf("%w: project %s is not accessible", rowstore.ErrUnauthorized, projectID)
	}
	return err
}

func (s *Store) checkOwned(tx *firestore.Transaction, ref *firestore.DocumentRef, table, userID string) error {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound || (err == nil && snap.Data()[ownerField] != userID) {
		return fmt.Errorf("%w: %s %s", rowstore.ErrNotFound, table, ref.ID)
	}
	return err
}

func toRow(t *schema.Table, snap *firestore.DocumentSnapshot) rowstore.Row {
	data := snap.Data()
	row := make(rowstore.Row, len(t.Columns))
	for _, col := range t.Columns {
		row[col] = data[col]
	}
	row["id"] = snap.Ref.ID
	return row
}

func copyRow(r rowstore.Row) rowstore.Row {
	out := make(rowstore.Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

func nextSequence(snaps []*firestore.DocumentSnapshot, col string) int64 {
	next := int64(0)
	for _, snap := range snaps {
		if n, ok := snap.Data()[col].(int64); ok && n+1 > next {
			next = n + 1
		}
	}
	return next
}

// wrapErr maps gRPC status codes onto the rowstore taxonomy. Errors that
// already carry a rowstore kind pass through.
func wrapErr(doing string, err error) error {
	for _, kind := range []error{rowstore.ErrQuery, rowstore.ErrNotFound, rowstore.ErrUnauthorized, rowstore.ErrTransport} {
		if errors.Is(err, kind) {
			return err
		}
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s: %v", rowstore.ErrNotFound, doing, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists:
		return fmt.Errorf("%w: %s: %v", rowstore.ErrQuery, doing, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %s: %v", rowstore.ErrUnauthorized, doing, err)
	}
	return fmt.Errorf("%w: %s: %v", rowstore.ErrTransport, doing, err)
}
