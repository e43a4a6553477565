package repositories

import "errors"

// ErrNotFound is wrapped by repository errors when the requested record
// does not exist, so callers can map it to a 404 with errors.Is.
var ErrNotFound = errors.New("record not found")
