package fsstore

import (
	"fmt"
	"sort"

	"github.com/tgienger/projecthub/internal/rowstore"
)

// matches reports whether row passes every filter.
func matches(row rowstore.Row, filters []rowstore.Filter) bool {
	for _, f := range filters {
		equal := same(row[f.Column], f.Value)
		if f.Op == rowstore.OpEq && !equal {
			return false
		}
		if f.Op == rowstore.OpNeq && equal {
			return false
		}
	}
	return true
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// sortRows orders rows by one column. Ties keep their id order so results are
// stable across calls.
func sortRows(rows []rowstore.Row, order *rowstore.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		if order != nil {
			c := compare(rows[i][order.Column], rows[j][order.Column])
			if c != 0 {
				if order.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return fmt.Sprint(rows[i]["id"]) < fmt.Sprint(rows[j]["id"])
	})
}

// compare orders nil first, integers numerically and everything else as text.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
