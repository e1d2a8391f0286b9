// Package repository gives the generic row client typed tables. Each table
// type doubles as the backend of the view synchronizer that lists it.
package repository

import (
	"context"
	"fmt"

	"github.com/tgienger/projecthub/internal/rowstore"
)

func selectAll[T any](ctx context.Context, c rowstore.Client, table string, q rowstore.Query) ([]T, error) {
	rows, err := c.Select(ctx, table, q)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	out, err := rowstore.DecodeAll[T](rows)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return out, nil
}

func selectOne[T any](ctx context.Context, c rowstore.Client, table, id string) (T, error) {
	var zero T
	items, err := selectAll[T](ctx, c, table, rowstore.NewQuery().Eq("id", id))
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("getting %s %s: %w", table, id, rowstore.ErrNotFound)
	}
	return items[0], nil
}

func insert[T any](ctx context.Context, c rowstore.Client, table string, payload any) (T, error) {
	var out T
	row, err := rowstore.Encode(payload)
	if err != nil {
		return out, fmt.Errorf("creating %s: %w", table, err)
	}
	inserted, err := c.Insert(ctx, table, row)
	if err != nil {
		return out, fmt.Errorf("creating %s: %w", table, err)
	}
	if err := rowstore.Decode(inserted, &out); err != nil {
		return out, fmt.Errorf("creating %s: %w", table, err)
	}
	return out, nil
}

func update(ctx context.Context, c rowstore.Client, table, id string, fields map[string]any) error {
	if err := c.Update(ctx, table, id, rowstore.Row(fields)); err != nil {
		return fmt.Errorf("updating %s %s: %w", table, id, err)
	}
	return nil
}

func remove(ctx context.Context, c rowstore.Client, table, id string) error {
	if err := c.Delete(ctx, table, id); err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	return nil
}
