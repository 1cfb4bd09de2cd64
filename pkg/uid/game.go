package uid

import "github.com/google/uuid"

// NewSessionID returns a fresh random id for a game session.
func NewSessionID() string {
	return uuid.NewString()
}
