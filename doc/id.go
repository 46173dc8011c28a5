package doc

import "github.com/google/uuid"

// NewID returns a new opaque unique identifier for layers, shapes, and
// paths. IDs are compared as plain strings everywhere; nothing parses them.
func NewID() string {
	return uuid.NewString()
}
