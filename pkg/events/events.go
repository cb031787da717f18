package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published on the bus.
const (
	TypeUserLogin        = "USER_LOGIN"
	TypeUserRegistered   = "USER_REGISTERED"
	TypeChatCreated      = "CHAT_CREATED"
	TypeQuestionAnswered = "QUESTION_ANSWERED"
	TypeGateCapped       = "GUEST_GATE_CAPPED"
)
