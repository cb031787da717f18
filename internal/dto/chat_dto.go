package dto

import (
	"time"

	"lexai-be/pkg/gate"

	"github.com/google/uuid"
)

// AskQuestionRequest carries no validate tags on purpose: empty inputs are
// reported inside AskQuestionResponse.Error, not as a 400.
type AskQuestionRequest struct {
	DocumentText  string     `json:"document_text"`
	Question      string     `json:"question"`
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
}

// AskQuestionResponse always carries either a populated answer or a
// non-null error, never both.
type AskQuestionResponse struct {
	Answer             *string      `json:"answer"`
	SuggestedQuestions []string     `json:"suggested_questions"`
	Error              *string      `json:"error"`
	Gate               *gate.Status `json:"gate,omitempty"`
}

type ExtractTextRequest struct {
	FileDataURI string `json:"file_data_uri" validate:"required"`
}

type ExtractTextResponse struct {
	ExtractedText *string `json:"extracted_text"`
	Error         *string `json:"error"`
}

type CreateChatRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	DocumentText string `json:"document_text"`
	Mode         string `json:"mode" validate:"omitempty,oneof=review write research"`
}

type CreateChatResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatSessionDTO struct {
	Id           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	DocumentText string           `json:"document_text"`
	Mode         string           `json:"mode"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
	Messages     []ChatMessageDTO `json:"messages"`
}

type UpdateDocumentTextRequest struct {
	DocumentText string `json:"document_text" validate:"required"`
}

type UpdateDocumentTextResponse struct {
	Success bool `json:"success"`
}

// PersistTurnMessage is the payload queued for the best-effort persistence
// consumer after an answered question.
type PersistTurnMessage struct {
	ChatSessionId uuid.UUID              `json:"chat_session_id"`
	UserId        uuid.UUID              `json:"user_id"`
	Question      string                 `json:"question"`
	Answer        string                 `json:"answer"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}
