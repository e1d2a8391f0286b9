package rowstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decode converts a row into dest (a pointer to a struct with json tags).
func Decode(row Row, dest any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: encoding row: %v", ErrTransport, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: decoding row: %v", ErrTransport, err)
	}
	return nil
}

// DecodeAll converts rows into a slice of T, preserving order.
func DecodeAll[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := Decode(row, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Encode converts a struct with json tags into a row. Fields dropped by
// omitempty are absent from the result so backend defaults apply.
func Encode(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %v", ErrQuery, err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %v", ErrQuery, err)
	}
	return Normalize(row), nil
}

// Normalize turns JSON numbers that hold whole values into int64 so every
// transport hands storage the same Go types.
func Normalize(row Row) Row {
	for k, v := range row {
		switch n := v.(type) {
		case float64:
			if n == float64(int64(n)) {
				row[k] = int64(n)
			}
		case json.Number:
			if i, err := n.Int64(); err == nil {
				row[k] = i
			} else if f, err := n.Float64(); err == nil {
				row[k] = f
			}
		}
	}
	return row
}

type userKey struct{}

// WithUser returns a context acting on behalf of userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the acting user id carried by ctx.
func UserFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

// RequireUser is UserFrom for backends: a missing user is ErrUnauthorized.
func RequireUser(ctx context.Context) (string, error) {
	id, ok := UserFrom(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	return id, nil
}
