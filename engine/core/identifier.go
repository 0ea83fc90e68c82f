package core

import "github.com/google/uuid"

// NewIdentifier returns a random identifier for scene objects.
func NewIdentifier() string {
	return uuid.NewString()
}
