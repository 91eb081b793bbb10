package models

import "errors"

// Domain errors that can be returned by the storage and index layers
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrNotIndexed indicates an id has no recorded position in a status index
	ErrNotIndexed = errors.New("id not present in status index")
)
