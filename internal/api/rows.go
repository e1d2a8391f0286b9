package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tgienger/projecthub/internal/rowstore"
)

// Select lists rows through GET /rest/{table}.
func (c *Client) Select(ctx context.Context, table string, q rowstore.Query) ([]rowstore.Row, error) {
	params := url.Values{}
	for _, f := range q.Filters {
		params.Add(f.Column, f.Encode())
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	path := "rest/" + url.PathEscape(table)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var rows []rowstore.Row
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rowstore.Normalize(row)
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, table string, row rowstore.Row) (rowstore.Row, error) {
	var out rowstore.Row
	if err := c.do(ctx, http.MethodPost, "rest/"+url.PathEscape(table), row, &out); err != nil {
		return nil, err
	}
	return rowstore.Normalize(out), nil
}

func (c *Client) Update(ctx context.Context, table, id string, fields rowstore.Row) error {
	return c.do(ctx, http.MethodPatch, "rest/"+url.PathEscape(table)+"/"+url.PathEscape(id), fields, nil)
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, "rest/"+url.PathEscape(table)+"/"+url.PathEscape(id), nil, nil)
}
