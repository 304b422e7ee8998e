// Package repository defines error types that are reused across the store
// implementations. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// knowing which backend served the request.
package repository

import "errors"

// ErrTheaterNotFound is returned when no theater row matches an id, either
// on lookup or when a staged update/remove affects no row on commit.
// Handlers should translate this into an HTTP 404 response.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrValueTooLong is returned when the database rejects a value that does
// not fit its column. Handlers should translate this into an HTTP 400.
var ErrValueTooLong = errors.New("value too long for column")
