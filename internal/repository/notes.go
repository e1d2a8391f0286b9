package repository

import (
	"context"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// Notes is the notes table. The list key is the project id.
type Notes struct {
	client rowstore.Client
}

func NewNotes(c rowstore.Client) *Notes {
	return &Notes{client: c}
}

// List returns the project's notes, most recently edited first.
func (r *Notes) List(ctx context.Context, projectID string) ([]models.Note, error) {
	q := rowstore.NewQuery().Eq("project_id", projectID).Desc("updated_at")
	return selectAll[models.Note](ctx, r.client, schema.Notes, q)
}

func (r *Notes) Create(ctx context.Context, projectID string, in models.NoteInsert) (models.Note, error) {
	in.ProjectID = projectID
	return insert[models.Note](ctx, r.client, schema.Notes, in)
}

func (r *Notes) Update(ctx context.Context, id string, u models.NoteUpdate) error {
	return update(ctx, r.client, schema.Notes, id, u.Fields())
}

func (r *Notes) Delete(ctx context.Context, id string) error {
	return remove(ctx, r.client, schema.Notes, id)
}
