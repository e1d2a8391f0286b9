package testutil

import (
	"context"
	"testing"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// Project options
type ProjectOption func(*models.ProjectInsert)

func WithDescription(d string) ProjectOption {
	return func(p *models.ProjectInsert) {
		p.Description = d
	}
}

// SeedProject inserts a project owned by the user acting in ctx.
func SeedProject(t *testing.T, ctx context.Context, c rowstore.Client, title string, opts ...ProjectOption) models.Project {
	t.Helper()
	userID, _ := rowstore.UserFrom(ctx)
	in := models.ProjectInsert{UserID: userID, Title: title}
	for _, opt := range opts {
		opt(&in)
	}
	var p models.Project
	seed(t, ctx, c, schema.Projects, in, &p)
	return p
}

// Task options
type TaskOption func(*models.TaskInsert)

func WithStatus(s models.Status) TaskOption {
	return func(ti *models.TaskInsert) {
		ti.Status = s
	}
}

func WithPriority(p models.Priority) TaskOption {
	return func(ti *models.TaskInsert) {
		ti.Priority = p
	}
}

func WithDeadline(d models.Date) TaskOption {
	return func(ti *models.TaskInsert) {
		ti.Deadline = &d
	}
}

func WithPosition(pos int) TaskOption {
	return func(ti *models.TaskInsert) {
		ti.Position = &pos
	}
}

func WithTaskDescription(d string) TaskOption {
	return func(ti *models.TaskInsert) {
		ti.Description = d
	}
}

func SeedTask(t *testing.T, ctx context.Context, c rowstore.Client, projectID, title string, opts ...TaskOption) models.Task {
	t.Helper()
	in := models.TaskInsert{ProjectID: projectID, Title: title}
	for _, opt := range opts {
		opt(&in)
	}
	var task models.Task
	seed(t, ctx, c, schema.Tasks, in, &task)
	return task
}

// Note options
type NoteOption func(*models.NoteInsert)

func WithNoteTitle(title string) NoteOption {
	return func(n *models.NoteInsert) {
		n.Title = title
	}
}

func WithContent(content string) NoteOption {
	return func(n *models.NoteInsert) {
		n.Content = content
	}
}

func SeedNote(t *testing.T, ctx context.Context, c rowstore.Client, projectID string, opts ...NoteOption) models.Note {
	t.Helper()
	in := models.NoteInsert{ProjectID: projectID}
	for _, opt := range opts {
		opt(&in)
	}
	var n models.Note
	seed(t, ctx, c, schema.Notes, in, &n)
	return n
}

func seed(t *testing.T, ctx context.Context, c rowstore.Client, table string, payload, dest any) {
	t.Helper()
	row, err := rowstore.Encode(payload)
	if err != nil {
		t.Fatalf("encoding %s fixture: %v", table, err)
	}
	inserted, err := c.Insert(ctx, table, row)
	if err != nil {
		t.Fatalf("seeding %s: %v", table, err)
	}
	if err := rowstore.Decode(inserted, dest); err != nil {
		t.Fatalf("decoding %s fixture: %v", table, err)
	}
}
