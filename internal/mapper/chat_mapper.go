package mapper

import (
	"encoding/json"
	"time"

	"lexai-be/internal/entity"
	"lexai-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	out := &model.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		Description:  s.Description,
		DocumentText: s.DocumentText,
		Mode:         s.Mode,
		CreatedAt:    s.CreatedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}
	return &entity.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		Description:  s.Description,
		DocumentText: s.DocumentText,
		Mode:         s.Mode,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	out := &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		CreatedAt:     msg.CreatedAt,
	}
	if len(msg.Meta) > 0 {
		if raw, err := json.Marshal(msg.Meta); err == nil {
			out.Meta = datatypes.JSON(raw)
		}
	}
	return out
}

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	out := &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		CreatedAt:     msg.CreatedAt,
	}
	if len(msg.Meta) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal(msg.Meta, &meta); err == nil {
			out.Meta = meta
		}
	}
	return out
}

func (m *ChatMapper) ChatMessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.ChatMessageToEntity(msg))
	}
	return out
}
