package uid

import (
	"strings"

	"github.com/google/uuid"
)

// NewConnectionID identifies one websocket connection. It is shorter than a
// session id since it travels in every chat frame.
func NewConnectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
