package models

import "time"

// DefaultNoteTitle is the title given to notes created without one.
const DefaultNoteTitle = "Untitled Note"

// User is an account known to the data service
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a user's top-level container for tasks and notes
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_id" yaml:"user_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// ProjectInsert is the payload for creating a project
type ProjectInsert struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ProjectUpdate changes the set fields of a project. The owner is immutable.
type ProjectUpdate struct {
	Title       *string
	Description *string
}

// Fields returns the columns this update sets.
func (u ProjectUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Description != nil {
		f["description"] = *u.Description
	}
	return f
}

// Task is one card on a project's kanban board
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Deadline    *Date     `json:"deadline"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskInsert is the payload for creating a task. Zero optional fields are
// left to the data service defaults.
type TaskInsert struct {
	ProjectID   string   `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Deadline    *Date    `json:"deadline,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

// TaskDraft is what a user fills in on the board; the project and column
// come from where the task is created.
type TaskDraft struct {
	Title       string
	Description string
	Priority    Priority
	Deadline    *Date
	Status      Status
}

// TaskUpdate changes the set fields of a task
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *Status
	Priority      *Priority
	Deadline      *Date
	ClearDeadline bool
	Position      *int
}

// Fields returns the columns this update sets.
func (u TaskUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Description != nil {
		f["description"] = *u.Description
	}
	if u.Status != nil {
		f["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		f["priority"] = string(*u.Priority)
	}
	if u.Deadline != nil {
		f["deadline"] = u.Deadline.String()
	} else if u.ClearDeadline {
		f["deadline"] = nil
	}
	if u.Position != nil {
		f["position"] = int64(*u.Position)
	}
	return f
}

// Note is a free-text document attached to a project
type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteInsert is the payload for creating a note
type NoteInsert struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
}

// NoteUpdate changes the set fields of a note
type NoteUpdate struct {
	Title   *string
	Content *string
}

// Fields returns the columns this update sets.
func (u NoteUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Content != nil {
		f["content"] = *u.Content
	}
	return f
}

// Stats are the dashboard counters
type Stats struct {
	Projects    int `json:"projects"`
	ActiveTasks int `json:"active_tasks"`
	Notes       int `json:"notes"`
}
