package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	Description  string
	DocumentText string
	Mode         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time

	// Hydrated message history in creation order. Only populated by
	// list/history reads, never by writes.
	Messages []*ChatMessage
}
