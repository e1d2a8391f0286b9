package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

var _ rowstore.Client = (*DB)(nil)

// ownerScope restricts statements to rows the acting user owns. Child tables
// are owned through their project.
func ownerScope(t *schema.Table) string {
	if t.OwnerColumn != "" {
		return t.OwnerColumn + " = ?"
	}
	return t.ParentColumn + " IN (SELECT id FROM " + schema.Projects + " WHERE user_id = ?)"
}

// Select returns the acting user's rows of table matching q
func (db *DB) Select(ctx context.Context, table string, q rowstore.Query) ([]rowstore.Row, error) {
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

	where := []string{ownerScope(t)}
	args := []any{userID}
	for _, f := range q.Filters {
		v := sqlValue(f.Value)
		switch {
		case v == nil && f.Op == rowstore.OpEq:
			where = append(where, f.Column+" IS NULL")
		case v == nil:
			where = append(where, f.Column+" IS NOT NULL")
		case f.Op == rowstore.OpEq:
			where = append(where, f.Column+" = ?")
			args = append(args, v)
		default:
			// neq keeps NULLs, matching the hosted service's semantics for
			// optional columns
			where = append(where, "("+f.Column+" IS NULL OR "+f.Column+" != ?)")
			args = append(args, v)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(t.Columns, ", "), t.Name, strings.Join(where, " AND "))
	if q.Order != nil {
		dir := "ASC"
		if q.Order.Descending {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s, rowid ASC", q.Order.Column, dir)
	} else {
		query += " ORDER BY rowid ASC"
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("selecting "+table, err)
	}
	defer rows.Close()

	var out []rowstore.Row
	for rows.Next() {
		vals := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapErr("scanning "+table, err)
		}
		row := make(rowstore.Row, len(t.Columns))
		for i, col := range t.Columns {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("reading "+table, err)
	}
	return out, nil
}

// Insert creates a row for the acting user and returns it with the server
// assigned fields filled in.
func (db *DB) Insert(ctx context.Context, table string, row rowstore.Row) (rowstore.Row, error) {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return nil, err
	}
	out, err := t.PrepareInsert(row, userID, db.now())
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning insert", err)
	}
	defer tx.Rollback()

	if t.ParentColumn != "" {
		parent, _ := out[t.ParentColumn].(string)
		var n int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+schema.Projects+" WHERE id = ? AND user_id = ?", parent, userID).Scan(&n)
		if err != nil {
			return nil, wrapErr("checking parent", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: project %s is not accessible", rowstore.ErrUnauthorized, parent)
		}
	}

	if seq := t.SequenceColumn; seq != "" {
		if _, ok := out[seq]; !ok {
			var next int64
			err := tx.QueryRowContext(ctx,
				fmt.Sprintf("SELECT COALESCE(MAX(%s), -1) + 1 FROM %s WHERE %s = ?", seq, t.Name, t.ParentColumn),
				out[t.ParentColumn]).Scan(&next)
			if err != nil {
				return nil, wrapErr("computing "+seq, err)
			}
			out[seq] = next
		}
	}

	cols := make([]string, 0, len(out))
	for col := range out {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = sqlValue(out[col])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(cols, ", "), placeholders),
		args...)
	if err != nil {
		return nil, wrapErr("inserting into "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing insert", err)
	}
	return out, nil
}

// Update sets fields on the acting user's row id
func (db *DB) Update(ctx context.Context, table, id string, fields rowstore.Row) error {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return err
	}
	set, err := t.PrepareUpdate(fields, db.now())
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	assigns := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, col := range cols {
		assigns[i] = col + " = ?"
		args = append(args, sqlValue(set[col]))
	}
	args = append(args, id, userID)

	res, err := db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND %s", t.Name, strings.Join(assigns, ", "), ownerScope(t)),
		args...)
	if err != nil {
		return wrapErr("updating "+table, err)
	}
	return expectOne(res, table, id)
}

// Delete removes the acting user's row id. Project deletes cascade to tasks
// and notes through the foreign keys.
func (db *DB) Delete(ctx context.Context, table, id string) error {
	userID, err := rowstore.RequireUser(ctx)
	if err != nil {
		return err
	}
	t, err := schema.Lookup(table)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ? AND %s", t.Name, ownerScope(t)), id, userID)
	if err != nil {
		return wrapErr("deleting from "+table, err)
	}
	return expectOne(res, table, id)
}

func expectOne(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("reading result", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", rowstore.ErrNotFound, table, id)
	}
	return nil
}

// sqlValue converts a row value into something the driver accepts.
func sqlValue(v any) any {
	switch x := v.(type) {
	case nil, string, int64, float64, bool:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// wrapErr maps driver errors onto the rowstore taxonomy.
func wrapErr(doing string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s: %v", rowstore.ErrQuery, doing, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", rowstore.ErrTransport, doing, err)
	}
	return fmt.Errorf("%w: %s: %v", rowstore.ErrTransport, doing, err)
}
