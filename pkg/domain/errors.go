package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEntityConfigNotFound is returned when no descriptor matches the requested kind and name.
var ErrEntityConfigNotFound = errors.New("entity configuration not found")

// ErrResolverDone is returned when a finished resolver is resumed.
var ErrResolverDone = errors.New("resolver already finished")

// ErrUnexpectedResume is returned when a resolver is resumed with a value it did not ask for.
var ErrUnexpectedResume = errors.New("unexpected resume value")

// ErrRecordNotFound is returned when a store has no data for the requested key.
var ErrRecordNotFound = errors.New("record not found")

// ErrKindNotLoadable is returned when a registry cannot load descriptors for a kind on demand.
var ErrKindNotLoadable = errors.New("entity kind cannot be loaded")

// ErrFetchFailed wraps fetcher failures that carry no HTTP status: transport errors and unreadable bodies.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError is a failed REST call. Code and Message come from the WordPress error body.
type FetchError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("fetch %s: status %d: %s (%s)", e.Path, e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
}

// IsNotFound reports whether err is a FetchError with status 404.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == http.StatusNotFound
}
