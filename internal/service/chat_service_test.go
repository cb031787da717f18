package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"lexai-be/internal/constant"
	"lexai-be/internal/dto"
	"lexai-be/internal/entity"
	"lexai-be/internal/repository/contract"
	"lexai-be/internal/repository/specification"
	"lexai-be/internal/repository/unitofwork"
	"lexai-be/pkg/assistant"
	"lexai-be/pkg/gate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error {
	return nil
}

type stubAnswerer struct {
	answer string
	err    error
	calls  int
}

func (s *stubAnswerer) Answer(ctx context.Context, input assistant.AnswerInput) (*assistant.AnswerOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &assistant.AnswerOutput{Answer: s.answer}, nil
}

type stubSuggester struct {
	questions []string
	err       error
	calls     int
}

func (s *stubSuggester) Suggest(ctx context.Context, input assistant.SuggestInput) (*assistant.SuggestOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &assistant.SuggestOutput{SuggestedQuestions: s.questions}, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, input assistant.ExtractInput) (*assistant.ExtractOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &assistant.ExtractOutput{ExtractedText: s.text}, nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// fakeStore is the shared in-memory backing for the fake repositories.
type fakeStore struct {
	mu       sync.Mutex
	sessions []*entity.ChatSession
	messages []*entity.ChatMessage
}

type fakeUowFactory struct {
	store *fakeStore
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository { return nil }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions = append(r.store.sessions, &cp)
	return nil
}

func (r *fakeSessionRepo) UpdateDocumentText(ctx context.Context, id uuid.UUID, documentText string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.Id == id {
			s.DocumentText = documentText
			return nil
		}
	}
	return errors.New("record not found")
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	matches, _ := r.filter(specs)
	if len(matches) == 0 {
		return nil, nil
	}
	cp := *matches[0]
	return &cp, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	matches, desc := r.filter(specs)
	sort.SliceStable(matches, func(i, j int) bool {
		if desc {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, _ := r.filter(specs)
	return int64(len(matches)), nil
}

func (r *fakeSessionRepo) filter(specs []specification.Specification) ([]*entity.ChatSession, bool) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	desc := false
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		match := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByID:
				if s.Id != sp.ID {
					match = false
				}
			case specification.UserOwnedBy:
				if s.UserId != sp.UserID {
					match = false
				}
			case specification.OrderBy:
				desc = sp.Desc
			}
		}
		if match {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, desc
}

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *message
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	desc := false
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		match := true
		for _, spec := range specs {
			switch sp := spec.(type) {
			case specification.ByChatSessionID:
				if m.ChatSessionId != sp.ChatSessionID {
					match = false
				}
			case specification.ByChatSessionIDs:
				found := false
				for _, id := range sp.ChatSessionIDs {
					if m.ChatSessionId == id {
						found = true
					}
				}
				if !found {
					match = false
				}
			case specification.OrderBy:
				desc = sp.Desc
			}
		}
		if match {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, err := r.FindAll(ctx, specs...)
	return int64(len(msgs)), err
}

// --- Fixture ---

type chatFixture struct {
	service   IChatService
	answerer  *stubAnswerer
	suggester *stubSuggester
	extractor *stubExtractor
	publisher *capturingPublisher
	gateStore gate.CounterStore
	store     *fakeStore
}

func newChatFixture() *chatFixture {
	store := &fakeStore{}
	answerer := &stubAnswerer{answer: "12 months."}
	suggester := &stubSuggester{questions: []string{"Who are the parties?", "What is the fee?"}}
	extractor := &stubExtractor{text: "Extracted text."}
	publisher := &capturingPublisher{}
	gateStore := gate.NewMemoryCounterStore()
	gateService := NewGateService(gate.NewMachine(3), gateStore, nil, nopLogger{})

	svc := NewChatService(
		&fakeUowFactory{store: store},
		answerer,
		suggester,
		extractor,
		gateService,
		publisher,
		nil,
		nopLogger{},
	)

	return &chatFixture{
		service:   svc,
		answerer:  answerer,
		suggester: suggester,
		extractor: extractor,
		publisher: publisher,
		gateStore: gateStore,
		store:     store,
	}
}

func guestIdentity(id string) entity.Identity {
	return entity.Identity{GuestId: id}
}

func userIdentity(id uuid.UUID) entity.Identity {
	return entity.Identity{UserId: &id}
}

// --- Tests ---

func TestAskQuestionValidation(t *testing.T) {
	tests := []struct {
		name     string
		document string
		question string
		wantErr  string
	}{
		{
			name:     "both empty",
			document: "",
			question: "",
			wantErr:  "Document text cannot be empty. Question cannot be empty.",
		},
		{
			name:     "whitespace only document",
			document: "   \n\t ",
			question: "What is the term?",
			wantErr:  "Document text cannot be empty.",
		},
		{
			name:     "whitespace only question",
			document: "Some document",
			question: "  ",
			wantErr:  "Question cannot be empty.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newChatFixture()

			res, err := fx.service.AskQuestion(context.Background(), guestIdentity("guest-1"), &dto.AskQuestionRequest{
				DocumentText: tt.document,
				Question:     tt.question,
			})
			require.NoError(t, err)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.wantErr, *res.Error)
			assert.Nil(t, res.Answer)
			assert.Empty(t, res.SuggestedQuestions)

			// Invalid input never reaches the model or the counter.
			assert.Equal(t, 0, fx.answerer.calls)
			used, _ := fx.gateStore.Get(context.Background(), "guest-1")
			assert.Equal(t, 0, used)
		})
	}
}

func TestAskQuestionReturnsAnswerAndSuggestions(t *testing.T) {
	fx := newChatFixture()

	res, err := fx.service.AskQuestion(context.Background(), guestIdentity("guest-1"), &dto.AskQuestionRequest{
		DocumentText: "This agreement lasts 12 months.",
		Question:     "How long is the agreement valid?",
	})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	require.NotNil(t, res.Answer)
	assert.Equal(t, "12 months.", *res.Answer)
	assert.Equal(t, []string{"Who are the parties?", "What is the fee?"}, res.SuggestedQuestions)

	require.NotNil(t, res.Gate)
	assert.Equal(t, 1, res.Gate.Used)
	assert.Equal(t, gate.StateAnonymousUncapped, res.Gate.State)
}

func TestAskQuestionSuggestionTruncation(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
		wantLen   int
	}{
		{"none", []string{}, 0},
		{"one", []string{"a?"}, 1},
		{"exactly three", []string{"a?", "b?", "c?"}, 3},
		{"ten", []string{"a?", "b?", "c?", "d?", "e?", "f?", "g?", "h?", "i?", "j?"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newChatFixture()
			fx.suggester.questions = tt.questions

			res, err := fx.service.AskQuestion(context.Background(), guestIdentity("guest-1"), &dto.AskQuestionRequest{
				DocumentText: "doc",
				Question:     "q?",
			})
			require.NoError(t, err)
			require.Nil(t, res.Error)
			assert.Len(t, res.SuggestedQuestions, tt.wantLen)
			if tt.wantLen > 0 {
				// Order is preserved; truncation drops from the tail.
				assert.Equal(t, tt.questions[:tt.wantLen], res.SuggestedQuestions)
			}
		})
	}
}

func TestAskQuestionGateCap(t *testing.T) {
	fx := newChatFixture()
	identity := guestIdentity("guest-capped")

	req := &dto.AskQuestionRequest{DocumentText: "doc", Question: "q?"}

	for i := 1; i <= 3; i++ {
		res, err := fx.service.AskQuestion(context.Background(), identity, req)
		require.NoError(t, err)
		require.Nil(t, res.Error, "question %d should succeed", i)
		require.NotNil(t, res.Gate)
		assert.Equal(t, i, res.Gate.Used)
	}

	// The third question hit the limit; the fourth is rejected before the
	// model is called.
	res, err := fx.service.AskQuestion(context.Background(), identity, req)
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, constant.GateCappedMessage, *res.Error)
	assert.Nil(t, res.Answer)
	require.NotNil(t, res.Gate)
	assert.True(t, res.Gate.RequireAuth)
	assert.Equal(t, gate.StateAnonymousCapped, res.Gate.State)
	assert.Equal(t, 3, fx.answerer.calls)
}

func TestAskQuestionAuthenticatedBypassesGate(t *testing.T) {
	fx := newChatFixture()
	identity := userIdentity(uuid.New())

	req := &dto.AskQuestionRequest{DocumentText: "doc", Question: "q?"}
	for i := 0; i < 10; i++ {
		res, err := fx.service.AskQuestion(context.Background(), identity, req)
		require.NoError(t, err)
		require.Nil(t, res.Error)
		assert.Nil(t, res.Gate)
	}
	assert.Equal(t, 10, fx.answerer.calls)
}

func TestAskQuestionGenerationFailures(t *testing.T) {
	t.Run("answer failure", func(t *testing.T) {
		fx := newChatFixture()
		fx.answerer.err = errors.New("model exploded")

		res, err := fx.service.AskQuestion(context.Background(), guestIdentity("g"), &dto.AskQuestionRequest{
			DocumentText: "doc",
			Question:     "q?",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Error)
		assert.Equal(t, constant.GenerationErrorMessage, *res.Error)
		assert.Nil(t, res.Answer)
	})

	t.Run("suggestion failure", func(t *testing.T) {
		fx := newChatFixture()
		fx.suggester.err = errors.New("model exploded")

		res, err := fx.service.AskQuestion(context.Background(), guestIdentity("g"), &dto.AskQuestionRequest{
			DocumentText: "doc",
			Question:     "q?",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Error)
		assert.Equal(t, constant.GenerationErrorMessage, *res.Error)
		assert.Nil(t, res.Answer)
	})
}

func TestAskQuestionPersistenceQueue(t *testing.T) {
	t.Run("authenticated with session queues the turn", func(t *testing.T) {
		fx := newChatFixture()
		sessionId := uuid.New()

		res, err := fx.service.AskQuestion(context.Background(), userIdentity(uuid.New()), &dto.AskQuestionRequest{
			DocumentText:  "doc",
			Question:      "q?",
			ChatSessionId: &sessionId,
		})
		require.NoError(t, err)
		require.Nil(t, res.Error)
		assert.Equal(t, 1, fx.publisher.count())
	})

	t.Run("authenticated without session does not queue", func(t *testing.T) {
		fx := newChatFixture()

		res, err := fx.service.AskQuestion(context.Background(), userIdentity(uuid.New()), &dto.AskQuestionRequest{
			DocumentText: "doc",
			Question:     "q?",
		})
		require.NoError(t, err)
		require.Nil(t, res.Error)
		assert.Equal(t, 0, fx.publisher.count())
	})

	t.Run("anonymous never queues", func(t *testing.T) {
		fx := newChatFixture()
		sessionId := uuid.New()

		res, err := fx.service.AskQuestion(context.Background(), guestIdentity("g"), &dto.AskQuestionRequest{
			DocumentText:  "doc",
			Question:      "q?",
			ChatSessionId: &sessionId,
		})
		require.NoError(t, err)
		require.Nil(t, res.Error)
		assert.Equal(t, 0, fx.publisher.count())
	})
}

func TestExtractText(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newChatFixture()

		res, err := fx.service.ExtractText(context.Background(), &dto.ExtractTextRequest{
			FileDataURI: "data:application/pdf;base64,JVBERg==",
		})
		require.NoError(t, err)
		require.NotNil(t, res.ExtractedText)
		assert.Equal(t, "Extracted text.", *res.ExtractedText)
		assert.Nil(t, res.Error)
	})

	t.Run("failure carries detail", func(t *testing.T) {
		fx := newChatFixture()
		fx.extractor.err = errors.New("unreadable scan")

		res, err := fx.service.ExtractText(context.Background(), &dto.ExtractTextRequest{
			FileDataURI: "data:application/pdf;base64,JVBERg==",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Error)
		assert.Contains(t, *res.Error, constant.ExtractionErrorPrefix)
		assert.Contains(t, *res.Error, "unreadable scan")
		assert.Nil(t, res.ExtractedText)
	})
}

func TestCreateChat(t *testing.T) {
	t.Run("with document seeds welcome message", func(t *testing.T) {
		fx := newChatFixture()
		userId := uuid.New()

		res, err := fx.service.CreateChat(context.Background(), userId, &dto.CreateChatRequest{
			Title:        "NDA Review",
			Description:  "Mutual NDA with Acme",
			DocumentText: "This NDA is made between...",
		})
		require.NoError(t, err)
		require.NotNil(t, res)

		history, err := fx.service.GetChatHistory(context.Background(), userId, res.Id)
		require.NoError(t, err)
		require.NotNil(t, history)
		assert.Equal(t, constant.ChatModeReview, history.Mode)
		require.Len(t, history.Messages, 1)
		assert.Equal(t, constant.ChatMessageRoleAssistant, history.Messages[0].Role)
		assert.Equal(t, constant.ChatWelcomeMessage, history.Messages[0].Content)
	})

	t.Run("without document has empty history", func(t *testing.T) {
		fx := newChatFixture()
		userId := uuid.New()

		res, err := fx.service.CreateChat(context.Background(), userId, &dto.CreateChatRequest{
			Title:       "Empty",
			Description: "No document yet",
			Mode:        constant.ChatModeResearch,
		})
		require.NoError(t, err)

		history, err := fx.service.GetChatHistory(context.Background(), userId, res.Id)
		require.NoError(t, err)
		require.NotNil(t, history)
		assert.Equal(t, constant.ChatModeResearch, history.Mode)
		assert.Empty(t, history.Messages)
	})
}

func TestGetAllChatsNewestFirst(t *testing.T) {
	fx := newChatFixture()
	userId := uuid.New()

	older := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "older",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	}
	newer := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "newer",
		CreatedAt: time.Now(),
	}
	foreign := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Title:     "foreign",
		CreatedAt: time.Now(),
	}
	fx.store.sessions = append(fx.store.sessions, older, newer, foreign)
	fx.store.messages = append(fx.store.messages, &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: older.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       "hello",
		CreatedAt:     time.Now(),
	})

	chats, err := fx.service.GetAllChats(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "newer", chats[0].Title)
	assert.Equal(t, "older", chats[1].Title)
	assert.Empty(t, chats[0].Messages)
	require.Len(t, chats[1].Messages, 1)
	assert.Equal(t, "hello", chats[1].Messages[0].Content)
}

func TestGetChatHistoryOwnership(t *testing.T) {
	fx := newChatFixture()
	owner := uuid.New()

	res, err := fx.service.CreateChat(context.Background(), owner, &dto.CreateChatRequest{
		Title:        "Mine",
		Description:  "d",
		DocumentText: "text",
	})
	require.NoError(t, err)

	history, err := fx.service.GetChatHistory(context.Background(), uuid.New(), res.Id)
	require.NoError(t, err)
	assert.Nil(t, history, "another user must not see the chat")
}

func TestUpdateDocumentText(t *testing.T) {
	fx := newChatFixture()
	userId := uuid.New()

	created, err := fx.service.CreateChat(context.Background(), userId, &dto.CreateChatRequest{
		Title:        "Contract",
		Description:  "d",
		DocumentText: "old text",
	})
	require.NoError(t, err)

	res, err := fx.service.UpdateDocumentText(context.Background(), userId, created.Id, &dto.UpdateDocumentTextRequest{
		DocumentText: "new text",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)

	history, err := fx.service.GetChatHistory(context.Background(), userId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "new text", history.DocumentText)
	// Replacing the document leaves the history alone.
	require.Len(t, history.Messages, 1)

	t.Run("unknown chat", func(t *testing.T) {
		res, err := fx.service.UpdateDocumentText(context.Background(), userId, uuid.New(), &dto.UpdateDocumentTextRequest{
			DocumentText: "x",
		})
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}
