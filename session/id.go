package session

import "github.com/google/uuid"

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}
