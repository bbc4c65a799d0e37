package state

import "github.com/google/uuid"

// NewCommandID returns a random command ID.
func NewCommandID() uuid.UUID {
	return uuid.New()
}

// NewScrapID returns a random scrap ID.
func NewScrapID() uuid.UUID {
	return uuid.New()
}
