// Package schema describes the data service tables: which columns exist, which
// a client may write, their server-side defaults and validation. Storage
// backends share it so every transport applies the same rules.
package schema

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
)

// Table names.
const (
	Projects = "projects"
	Tasks    = "tasks"
	Notes    = "notes"
)

// TimeLayout is fixed width so stored timestamps sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NewID returns a fresh row identifier.
func NewID() string {
	return uuid.New().String()
}

// Table is the rule set for one table.
type Table struct {
	Name    string
	Columns []string

	// OwnerColumn holds the owning user id on top-level tables.
	OwnerColumn string
	// ParentColumn references projects.id on child tables.
	ParentColumn string
	// TouchColumn is refreshed with the current time on every update.
	TouchColumn string
	// SequenceColumn, when absent from an insert, is set by the backend to
	// one past the largest value among rows with the same parent.
	SequenceColumn string

	insertable map[string]bool
	updatable  map[string]bool
	required   []string
	defaults   map[string]any
	validate   func(rowstore.Row) error
}

var tables = map[string]*Table{
	Projects: {
		Name:        Projects,
		Columns:     []string{"id", "user_id", "title", "description", "created_at"},
		OwnerColumn: "user_id",
		insertable:  set("user_id", "title", "description"),
		updatable:   set("title", "description"),
		required:    []string{"user_id", "title"},
		defaults:    map[string]any{"description": ""},
	},
	Tasks: {
		Name:           Tasks,
		Columns:        []string{"id", "project_id", "title", "description", "status", "priority", "deadline", "position", "created_at"},
		ParentColumn:   "project_id",
		SequenceColumn: "position",
		insertable:     set("project_id", "title", "description", "status", "priority", "deadline", "position"),
		updatable:      set("title", "description", "status", "priority", "deadline", "position"),
		required:       []string{"project_id", "title"},
		defaults: map[string]any{
			"description": "",
			"status":      string(models.StatusTodo),
			"priority":    string(models.PriorityMedium),
			"deadline":    nil,
		},
		validate: validateTask,
	},
	Notes: {
		Name:         Notes,
		Columns:      []string{"id", "project_id", "title", "content", "created_at", "updated_at"},
		ParentColumn: "project_id",
		TouchColumn:  "updated_at",
		insertable:   set("project_id", "title", "content"),
		updatable:    set("title", "content"),
		required:     []string{"project_id"},
		defaults: map[string]any{
			"title":   models.DefaultNoteTitle,
			"content": "",
		},
	},
}

func set(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// Lookup returns the table named name.
func Lookup(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table %q", rowstore.ErrQuery, name)
	}
	return t, nil
}

// Names lists the known tables in sorted order.
func Names() []string {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// CheckQuery rejects filters and orders on unknown columns.
func (t *Table) CheckQuery(q rowstore.Query) error {
	for _, f := range q.Filters {
		if !t.HasColumn(f.Column) {
			return fmt.Errorf("%w: unknown column %s.%s", rowstore.ErrQuery, t.Name, f.Column)
		}
		if f.Op != rowstore.OpEq && f.Op != rowstore.OpNeq {
			return fmt.Errorf("%w: unsupported operator %q", rowstore.ErrQuery, f.Op)
		}
	}
	if q.Order != nil && !t.HasColumn(q.Order.Column) {
		return fmt.Errorf("%w: unknown column %s.%s", rowstore.ErrQuery, t.Name, q.Order.Column)
	}
	return nil
}

// PrepareInsert validates a client row and completes it with the id,
// timestamps and defaults the data service assigns. The owner column is
// forced to userID.
func (t *Table) PrepareInsert(row rowstore.Row, userID string, now time.Time) (rowstore.Row, error) {
	out := rowstore.Row{}
	for col, v := range row {
		if !t.insertable[col] {
			return nil, fmt.Errorf("%w: column %s.%s cannot be set on insert", rowstore.ErrQuery, t.Name, col)
		}
		out[col] = v
	}
	if t.OwnerColumn != "" {
		if owner, ok := out[t.OwnerColumn].(string); ok && owner != "" && owner != userID {
			return nil, fmt.Errorf("%w: cannot create rows for another user", rowstore.ErrUnauthorized)
		}
		out[t.OwnerColumn] = userID
	}
	for col, v := range t.defaults {
		if cur, ok := out[col]; !ok || cur == nil || cur == "" {
			out[col] = v
		}
	}
	for _, col := range t.required {
		if s, ok := out[col].(string); !ok || s == "" {
			return nil, fmt.Errorf("%w: %s.%s is required", rowstore.ErrQuery, t.Name, col)
		}
	}
	if t.validate != nil {
		if err := t.validate(out); err != nil {
			return nil, err
		}
	}
	ts := FormatTime(now)
	out["id"] = NewID()
	out["created_at"] = ts
	if t.HasColumn("updated_at") {
		out["updated_at"] = ts
	}
	return rowstore.Normalize(out), nil
}

// PrepareUpdate validates a partial field set and adds the touch column.
func (t *Table) PrepareUpdate(fields rowstore.Row, now time.Time) (rowstore.Row, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty update", rowstore.ErrQuery)
	}
	out := rowstore.Row{}
	for col, v := range fields {
		if !t.updatable[col] {
			return nil, fmt.Errorf("%w: column %s.%s cannot be updated", rowstore.ErrQuery, t.Name, col)
		}
		out[col] = v
	}
	if s, ok := out["title"]; ok {
		if str, _ := s.(string); str == "" && t.Name != Notes {
			return nil, fmt.Errorf("%w: %s.title cannot be empty", rowstore.ErrQuery, t.Name)
		}
	}
	if t.validate != nil {
		if err := t.validate(out); err != nil {
			return nil, err
		}
	}
	if t.TouchColumn != "" {
		out[t.TouchColumn] = FormatTime(now)
	}
	return rowstore.Normalize(out), nil
}

func validateTask(row rowstore.Row) error {
	if v, ok := row["status"]; ok {
		s, _ := v.(string)
		if !models.Status(s).Valid() {
			return fmt.Errorf("%w: invalid status %v", rowstore.ErrQuery, v)
		}
	}
	if v, ok := row["priority"]; ok {
		p, _ := v.(string)
		if !models.Priority(p).Valid() {
			return fmt.Errorf("%w: invalid priority %v", rowstore.ErrQuery, v)
		}
	}
	if v, ok := row["deadline"]; ok && v != nil {
		s, _ := v.(string)
		if _, err := models.ParseDate(s); err != nil {
			return fmt.Errorf("%w: %v", rowstore.ErrQuery, err)
		}
	}
	if v, ok := row["position"]; ok {
		switch n := v.(type) {
		case int, int64:
		case float64:
			if n != math.Trunc(n) {
				return fmt.Errorf("%w: position must be a whole number, got %v", rowstore.ErrQuery, v)
			}
		default:
			return fmt.Errorf("%w: invalid position %v", rowstore.ErrQuery, v)
		}
	}
	return nil
}
