package repository

import (
	"context"
	"strings"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// Projects is the projects table. The list key is the owning user id.
type Projects struct {
	client rowstore.Client
}

func NewProjects(c rowstore.Client) *Projects {
	return &Projects{client: c}
}

// List returns the user's projects, newest first.
func (r *Projects) List(ctx context.Context, userID string) ([]models.Project, error) {
	q := rowstore.NewQuery().Eq("user_id", userID).Desc("created_at")
	return selectAll[models.Project](ctx, r.client, schema.Projects, q)
}

func (r *Projects) Get(ctx context.Context, id string) (models.Project, error) {
	return selectOne[models.Project](ctx, r.client, schema.Projects, id)
}

// Create inserts a project owned by userID.
func (r *Projects) Create(ctx context.Context, userID string, in models.ProjectInsert) (models.Project, error) {
	in.UserID = userID
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return insert[models.Project](ctx, r.client, schema.Projects, in)
}

func (r *Projects) Update(ctx context.Context, id string, u models.ProjectUpdate) error {
	return update(ctx, r.client, schema.Projects, id, u.Fields())
}

// Delete removes the project; its tasks and notes go with it.
func (r *Projects) Delete(ctx context.Context, id string) error {
	return remove(ctx, r.client, schema.Projects, id)
}
