package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"lexai-be/internal/constant"
	"lexai-be/internal/dto"
	"lexai-be/internal/entity"
	"lexai-be/internal/pkg/logger"
	"lexai-be/internal/repository/specification"
	"lexai-be/internal/repository/unitofwork"
	"lexai-be/pkg/assistant"
	"lexai-be/pkg/events"
	pkgNats "lexai-be/pkg/nats"

	"github.com/google/uuid"
)

// QuestionAnswerer produces an answer grounded in the document text.
type QuestionAnswerer interface {
	Answer(ctx context.Context, input assistant.AnswerInput) (*assistant.AnswerOutput, error)
}

// QuestionSuggester proposes follow-up questions for the document.
type QuestionSuggester interface {
	Suggest(ctx context.Context, input assistant.SuggestInput) (*assistant.SuggestOutput, error)
}

// TextExtractor converts an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, input assistant.ExtractInput) (*assistant.ExtractOutput, error)
}

type IChatService interface {
	AskQuestion(ctx context.Context, identity entity.Identity, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	ExtractText(ctx context.Context, req *dto.ExtractTextRequest) (*dto.ExtractTextResponse, error)
	CreateChat(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error)
	GetAllChats(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionDTO, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) (*dto.ChatSessionDTO, error)
	UpdateDocumentText(ctx context.Context, userId uuid.UUID, chatId uuid.UUID, req *dto.UpdateDocumentTextRequest) (*dto.UpdateDocumentTextResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	answerer         QuestionAnswerer
	suggester        QuestionSuggester
	extractor        TextExtractor
	gateService      IGateService
	publisherService IPublisherService
	eventPublisher   *pkgNats.Publisher
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	answerer QuestionAnswerer,
	suggester QuestionSuggester,
	extractor TextExtractor,
	gateService IGateService,
	publisherService IPublisherService,
	eventPublisher *pkgNats.Publisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		answerer:         answerer,
		suggester:        suggester,
		extractor:        extractor,
		gateService:      gateService,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

// AskQuestion runs a full question turn: validate, count against the guest
// gate, generate an answer and follow-up suggestions, then queue the turn
// for persistence when the caller is signed in and bound to a chat.
// Generation failures never surface their internals; the caller gets one
// generic message and the diagnostics go to the log.
func (cs *chatService) AskQuestion(ctx context.Context, identity entity.Identity, req *dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	if msg := validateAskInput(req); msg != "" {
		return &dto.AskQuestionResponse{
			SuggestedQuestions: []string{},
			Error:              &msg,
		}, nil
	}

	if !identity.Authenticated() {
		status := cs.gateService.Status(ctx, identity)
		if status.RequireAuth {
			msg := constant.GateCappedMessage
			return &dto.AskQuestionResponse{
				SuggestedQuestions: []string{},
				Error:              &msg,
				Gate:               &status,
			}, nil
		}
	}

	gateStatus, err := cs.gateService.RegisterQuestion(ctx, identity)
	if err != nil {
		return nil, err
	}

	res := &dto.AskQuestionResponse{SuggestedQuestions: []string{}}
	if !identity.Authenticated() {
		res.Gate = &gateStatus
	}

	answerOut, err := cs.answerer.Answer(ctx, assistant.AnswerInput{
		DocumentText: req.DocumentText,
		Question:     req.Question,
	})
	if err != nil {
		cs.logger.Error("ChatService", "Answer generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg := constant.GenerationErrorMessage
		res.Error = &msg
		return res, nil
	}

	suggestOut, err := cs.suggester.Suggest(ctx, assistant.SuggestInput{
		DocumentContent:  req.DocumentText,
		PreviousQuestion: req.Question,
	})
	if err != nil {
		cs.logger.Error("ChatService", "Suggestion generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg := constant.GenerationErrorMessage
		res.Error = &msg
		return res, nil
	}

	suggestions := suggestOut.SuggestedQuestions
	if len(suggestions) > constant.MaxSuggestedQuestions {
		suggestions = suggestions[:constant.MaxSuggestedQuestions]
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	res.Answer = &answerOut.Answer
	res.SuggestedQuestions = suggestions

	if identity.Authenticated() && req.ChatSessionId != nil {
		cs.queueTurn(ctx, *identity.UserId, *req.ChatSessionId, req.Question, answerOut.Answer, suggestions)
	}

	cs.publishEvent(ctx, events.TypeQuestionAnswered, map[string]interface{}{
		"authenticated": identity.Authenticated(),
	})

	return res, nil
}

func validateAskInput(req *dto.AskQuestionRequest) string {
	var msgs []string
	if strings.TrimSpace(req.DocumentText) == "" {
		msgs = append(msgs, constant.EmptyDocumentMessage)
	}
	if strings.TrimSpace(req.Question) == "" {
		msgs = append(msgs, constant.EmptyQuestionMessage)
	}
	return strings.Join(msgs, " ")
}

// queueTurn hands the answered turn to the persistence consumer. Failures
// only get logged; the user already has their answer.
func (cs *chatService) queueTurn(ctx context.Context, userId, chatSessionId uuid.UUID, question, answer string, suggestions []string) {
	payload := dto.PersistTurnMessage{
		ChatSessionId: chatSessionId,
		UserId:        userId,
		Question:      question,
		Answer:        answer,
		Meta: map[string]interface{}{
			"suggested_questions": suggestions,
		},
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		cs.logger.Error("ChatService", "Failed to encode turn for persistence", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := cs.publisherService.Publish(ctx, msgJson); err != nil {
		cs.logger.Error("ChatService", "Failed to queue turn for persistence", map[string]interface{}{
			"chat_session_id": chatSessionId,
			"error":           err.Error(),
		})
	}
}

func (cs *chatService) ExtractText(ctx context.Context, req *dto.ExtractTextRequest) (*dto.ExtractTextResponse, error) {
	out, err := cs.extractor.Extract(ctx, assistant.ExtractInput{FileDataURI: req.FileDataURI})
	if err != nil {
		cs.logger.Error("ChatService", "Text extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg := constant.ExtractionErrorPrefix + " Details: " + err.Error()
		return &dto.ExtractTextResponse{Error: &msg}, nil
	}
	return &dto.ExtractTextResponse{ExtractedText: &out.ExtractedText}, nil
}

// CreateChat persists a new chat session. A non-empty source document seeds
// the history with a single assistant welcome message so returning users see
// where the conversation started.
func (cs *chatService) CreateChat(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	mode := req.Mode
	if mode == "" {
		mode = constant.ChatModeReview
	}

	now := time.Now()
	chatSession := entity.ChatSession{
		Id:           uuid.New(),
		UserId:       userId,
		Title:        req.Title,
		Description:  req.Description,
		DocumentText: req.DocumentText,
		Mode:         mode,
		CreatedAt:    now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.DocumentText) != "" {
		welcome := entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: chatSession.Id,
			Role:          constant.ChatMessageRoleAssistant,
			Content:       constant.ChatWelcomeMessage,
			CreatedAt:     now,
		}
		if err := uow.ChatMessageRepository().Create(ctx, &welcome); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.publishEvent(ctx, events.TypeChatCreated, map[string]interface{}{
		"chat_session_id": chatSession.Id,
		"user_id":         userId,
		"title":           chatSession.Title,
	})

	return &dto.CreateChatResponse{Id: chatSession.Id}, nil
}

// GetAllChats returns the caller's sessions newest first, each with its full
// message history in creation order.
func (cs *chatService) GetAllChats(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ChatSessionDTO, 0, len(chatSessions))
	if len(chatSessions) == 0 {
		return response, nil
	}

	sessionIds := make([]uuid.UUID, len(chatSessions))
	for i, s := range chatSessions {
		sessionIds[i] = s.Id
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionIDs{ChatSessionIDs: sessionIds},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	bySession := make(map[uuid.UUID][]dto.ChatMessageDTO, len(chatSessions))
	for _, m := range messages {
		bySession[m.ChatSessionId] = append(bySession[m.ChatSessionId], chatMessageToDTO(m))
	}

	for _, s := range chatSessions {
		d := chatSessionToDTO(s)
		d.Messages = bySession[s.Id]
		if d.Messages == nil {
			d.Messages = []dto.ChatMessageDTO{}
		}
		response = append(response, d)
	}

	return response, nil
}

// GetChatHistory returns one session with its messages, or nil when the
// session does not exist or belongs to someone else.
func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, chatId uuid.UUID) (*dto.ChatSessionDTO, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: chatId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	d := chatSessionToDTO(sess)
	d.Messages = make([]dto.ChatMessageDTO, 0, len(messages))
	for _, m := range messages {
		d.Messages = append(d.Messages, chatMessageToDTO(m))
	}

	return d, nil
}

// UpdateDocumentText replaces the session's source document, for example
// after a re-extraction. Message history stays untouched.
func (cs *chatService) UpdateDocumentText(ctx context.Context, userId uuid.UUID, chatId uuid.UUID, req *dto.UpdateDocumentTextRequest) (*dto.UpdateDocumentTextResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if err := uow.ChatSessionRepository().UpdateDocumentText(ctx, chatId, req.DocumentText); err != nil {
		return nil, err
	}

	return &dto.UpdateDocumentTextResponse{Success: true}, nil
}

func (cs *chatService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func chatSessionToDTO(s *entity.ChatSession) *dto.ChatSessionDTO {
	return &dto.ChatSessionDTO{
		Id:           s.Id,
		Title:        s.Title,
		Description:  s.Description,
		DocumentText: s.DocumentText,
		Mode:         s.Mode,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func chatMessageToDTO(m *entity.ChatMessage) dto.ChatMessageDTO {
	return dto.ChatMessageDTO{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
