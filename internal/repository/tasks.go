package repository

import (
	"context"
	"strings"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// Tasks is the tasks table. The list key is the project id.
type Tasks struct {
	client rowstore.Client
}

func NewTasks(c rowstore.Client) *Tasks {
	return &Tasks{client: c}
}

// List returns the project's tasks in board order.
func (r *Tasks) List(ctx context.Context, projectID string) ([]models.Task, error) {
	q := rowstore.NewQuery().Eq("project_id", projectID).Asc("position")
	return selectAll[models.Task](ctx, r.client, schema.Tasks, q)
}

// Create adds a task to the project in the draft's column. A draft without a
// status lands in To Do; zero optional fields take the service defaults.
func (r *Tasks) Create(ctx context.Context, projectID string, d models.TaskDraft) (models.Task, error) {
	in := models.TaskInsert{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Status:      d.Status,
		Priority:    d.Priority,
		Deadline:    d.Deadline,
	}
	return insert[models.Task](ctx, r.client, schema.Tasks, in)
}

func (r *Tasks) Update(ctx context.Context, id string, u models.TaskUpdate) error {
	return update(ctx, r.client, schema.Tasks, id, u.Fields())
}

func (r *Tasks) Delete(ctx context.Context, id string) error {
	return remove(ctx, r.client, schema.Tasks, id)
}

// Move sets the task's status.
func (r *Tasks) Move(ctx context.Context, id string, to models.Status) error {
	return r.Update(ctx, id, models.TaskUpdate{Status: &to})
}
