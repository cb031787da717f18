package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lexai-be/internal/constant"
	"lexai-be/internal/dto"
	"lexai-be/internal/entity"
	"lexai-be/internal/repository/specification"
	"lexai-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the persistence queue and appends answered turns to
// their chat history. Persistence is best effort: a turn that cannot be
// written is retried, a turn for a vanished or foreign session is dropped.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: payload.ChatSessionId},
		specification.UserOwnedBy{UserID: payload.UserId},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load chat session %s: %v", payload.ChatSessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if sess == nil {
		// Session deleted or not owned by the sender. Nothing to append to.
		log.Printf("[WARN] Dropping turn for unknown chat session %s", payload.ChatSessionId)
		msg.Ack()
		return
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       payload.Question,
		CreatedAt:     now,
	}
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       payload.Answer,
		Meta:          payload.Meta,
		// Offset keeps creation-order reads deterministic for the pair.
		CreatedAt: now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		log.Printf("[ERROR] Failed to append user message: %v", err)
		msg.Nack()
		return
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		log.Printf("[ERROR] Failed to append assistant message: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	msg.Ack()
}
