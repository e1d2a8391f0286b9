package repository

import (
	"context"
	"fmt"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// ProjectExport is a project with everything it owns.
type ProjectExport struct {
	Project models.Project `json:"project" yaml:"project"`
	Tasks   []TaskExport   `json:"tasks" yaml:"tasks"`
	Notes   []NoteExport   `json:"notes" yaml:"notes"`
}

type TaskExport struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Priority    string `json:"priority" yaml:"priority"`
	Deadline    string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Position    int    `json:"position" yaml:"position"`
}

type NoteExport struct {
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
}

// Export gathers a project and its tasks and notes.
func Export(ctx context.Context, c rowstore.Client, projectID string) (ProjectExport, error) {
	p, err := NewProjects(c).Get(ctx, projectID)
	if err != nil {
		return ProjectExport{}, fmt.Errorf("exporting project: %w", err)
	}
	tasks, err := NewTasks(c).List(ctx, projectID)
	if err != nil {
		return ProjectExport{}, fmt.Errorf("exporting project: %w", err)
	}
	notes, err := NewNotes(c).List(ctx, projectID)
	if err != nil {
		return ProjectExport{}, fmt.Errorf("exporting project: %w", err)
	}

	out := ProjectExport{Project: p}
	for _, t := range tasks {
		te := TaskExport{
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			Position:    t.Position,
		}
		if t.Deadline != nil {
			te.Deadline = t.Deadline.String()
		}
		out.Tasks = append(out.Tasks, te)
	}
	for _, n := range notes {
		out.Notes = append(out.Notes, NoteExport{
			Title:     n.Title,
			Content:   n.Content,
			UpdatedAt: n.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return out, nil
}
