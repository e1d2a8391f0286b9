package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/projecthub/internal/rowstore"
	"github.com/tgienger/projecthub/internal/schema"
)

func (s *Server) selectRows(c *gin.Context) {
	table := c.Param("table")
	q, err := parseQuery(table, c.Request.URL.Query())
	if err != nil {
		s.fail(c, err)
		return
	}
	rows, err := s.store.Select(c.Request.Context(), table, q)
	if err != nil {
		s.fail(c, err)
		return
	}
	if rows == nil {
		rows = []rowstore.Row{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) insertRow(c *gin.Context) {
	row, err := readRow(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	inserted, err := s.store.Insert(c.Request.Context(), c.Param("table"), row)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inserted)
}

func (s *Server) updateRow(c *gin.Context) {
	fields, err := readRow(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.Update(c.Request.Context(), c.Param("table"), c.Param("id"), fields); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteRow(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("table"), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func readRow(c *gin.Context) (rowstore.Row, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var row rowstore.Row
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %v", rowstore.ErrQuery, err)
	}
	return rowstore.Normalize(row), nil
}

// parseQuery reads PostgREST style parameters: col=op.value filters and
// order=col.asc|desc.
func parseQuery(table string, params map[string][]string) (rowstore.Query, error) {
	t, err := schema.Lookup(table)
	if err != nil {
		return rowstore.Query{}, err
	}
	q := rowstore.NewQuery()
	for key, values := range params {
		for _, raw := range values {
			if key == "order" {
				col, dir, _ := strings.Cut(raw, ".")
				switch dir {
				case "", "asc":
					q = q.Asc(col)
				case "desc":
					q = q.Desc(col)
				default:
					return q, fmt.Errorf("%w: bad order %q", rowstore.ErrQuery, raw)
				}
				continue
			}
			if f, ok := rowstore.ParseNullFilter(key, raw); ok {
				q.Filters = append(q.Filters, f)
				continue
			}
			opName, value, ok := strings.Cut(raw, ".")
			if !ok {
				return q, fmt.Errorf("%w: bad filter %s=%s", rowstore.ErrQuery, key, raw)
			}
			op, err := rowstore.ParseOp(opName)
			if err != nil {
				return q, err
			}
			q.Filters = append(q.Filters, rowstore.Filter{Column: key, Op: op, Value: coerce(t, key, value)})
		}
	}
	return q, nil
}

// coerce turns query-string values for integer columns into numbers.
func coerce(t *schema.Table, col, value string) any {
	if col == t.SequenceColumn {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return value
}

// fail writes err as a JSON error with the status matching its kind.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rowstore.ErrQuery):
		status = http.StatusBadRequest
	case errors.Is(err, rowstore.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, rowstore.ErrNotFound):
		status = http.StatusNotFound
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
