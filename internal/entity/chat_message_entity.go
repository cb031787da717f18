package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is append-only: once created it is never updated or deleted.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	Meta          map[string]interface{}
	CreatedAt     time.Time
}
