// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// search service, the cart service and HTTP handlers to distinguish
// between different failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key finds no row.  Handlers
// translate it into an HTTP 404 response; the search service treats a
// missing city as an empty result instead.
var ErrNotFound = errors.New("not found")
