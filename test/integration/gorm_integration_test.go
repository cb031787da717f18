package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"lexai-be/internal/constant"
	"lexai-be/internal/entity"
	"lexai-be/internal/repository/specification"
	"lexai-be/internal/repository/unitofwork"
	"lexai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Repositories", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatSession count: %d", count)

		count, err = uow.ChatMessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatMessage count: %d", count)
	})

	t.Run("Check Transactional Chat Creation", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Status:   entity.UserStatusActive,
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		now := time.Now()
		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:           sessionId,
			UserId:       userId,
			Title:        "Integration Chat",
			Description:  "Created by the integration suite",
			DocumentText: "This agreement is made between the parties.",
			Mode:         constant.ChatModeReview,
			CreatedAt:    now,
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		welcome := &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          constant.ChatMessageRoleAssistant,
			Content:       constant.ChatWelcomeMessage,
			CreatedAt:     now,
		}
		err = uow.ChatMessageRepository().Create(ctx, welcome)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read the pair back through specifications.
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		assert.NoError(t, err)
		assert.NotNil(t, found)

		messages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		assert.NoError(t, err)
		assert.Len(t, messages, 1)
		assert.Equal(t, constant.ChatWelcomeMessage, messages[0].Content)

		t.Log("Successfully created Chat Session with welcome message in Transaction")
	})
}
