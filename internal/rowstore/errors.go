package rowstore

import "errors"

var (
	// ErrTransport is returned when the data service could not be reached or
	// answered with something unreadable.
	ErrTransport = errors.New("transport failure")

	// ErrQuery is returned for invalid queries and constraint violations.
	ErrQuery = errors.New("invalid query")

	// ErrNotFound is returned when an update or delete targets a missing row.
	ErrNotFound = errors.New("row not found")

	// ErrUnauthorized is returned when no signed-in user backs the request.
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind names the category of err for logs and notifications.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrQuery):
		return "query"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "transport"
	}
}
