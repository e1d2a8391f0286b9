package repository

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tgienger/projecthub/internal/models"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

// LoadStats counts the user's projects, unfinished tasks and notes. The
// three selects run concurrently.
func LoadStats(ctx context.Context, c rowstore.Client, userID string) (models.Stats, error) {
	var projects, tasks, notes []rowstore.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = c.Select(gctx, schema.Projects, rowstore.NewQuery().Eq("user_id", userID))
		return err
	})
	g.Go(func() (err error) {
		tasks, err = c.Select(gctx, schema.Tasks, rowstore.NewQuery().Neq("status", string(models.StatusDone)))
		return err
	})
	g.Go(func() (err error) {
		notes, err = c.Select(gctx, schema.Notes, rowstore.NewQuery())
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Stats{}, fmt.Errorf("loading stats: %w", err)
	}
	return models.Stats{
		Projects:    len(projects),
		ActiveTasks: len(tasks),
		Notes:       len(notes),
	}, nil
}
