package library

import "fmt"

// ValidationError reports user input the store refuses to persist, such as
// an empty playlist name. It is safe to show to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps a persistence failure. The in-memory state the caller
// observed before the failing operation is still valid.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrPlaylistNotFound is returned by operations that address a playlist by
// name when no playlist with that name exists.
var ErrPlaylistNotFound = fmt.Errorf("playlist not found")
