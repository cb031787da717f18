package bootstrap

import (
	"context"
	"log"

	"lexai-be/internal/config"
	"lexai-be/internal/controller"
	"lexai-be/internal/pkg/logger"
	"lexai-be/internal/pkg/mailer"
	"lexai-be/internal/repository/unitofwork"
	"lexai-be/internal/service"
	"lexai-be/pkg/assistant"
	"lexai-be/pkg/gate"
	"lexai-be/pkg/llm/factory"

	pkgNats "lexai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const persistTurnTopic = "chat.persist_turn"

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	GateController  controller.IGateController
	AuthController  controller.IAuthController
	OAuthController controller.IOAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. LLM Provider and prompt adapters
	modelName := cfg.Ai.GeminiModel
	if cfg.Ai.Provider == "ollama" {
		modelName = cfg.Ai.OllamaModel
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		modelName,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, modelName)

	answerer := assistant.NewAnswerer(llmProvider)
	suggester := assistant.NewSuggester(llmProvider)

	docReader, ok := factory.NewDocumentReader(llmProvider)
	if !ok {
		log.Printf("[WARN] LLM provider %s does not support file extraction", cfg.Ai.Provider)
	}
	extractor := assistant.NewExtractor(docReader)

	// 4. Guest question gate
	var counterStore gate.CounterStore
	if cfg.Gate.CounterStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		counterStore = gate.NewRedisCounterStore(rdb)
	} else {
		counterStore = gate.NewMemoryCounterStore()
	}
	gateMachine := gate.NewMachine(cfg.Gate.QuestionLimit)

	// 5. Services
	publisherService := service.NewPublisherService(persistTurnTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, persistTurnTopic, uowFactory)

	gateService := service.NewGateService(gateMachine, counterStore, natsPub, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		answerer,
		suggester,
		extractor,
		gateService,
		publisherService,
		natsPub,
		sysLogger,
	)
	authService := service.NewAuthService(uowFactory, emailService, gateService, natsPub)
	oauthService := service.NewOAuthService(
		uowFactory,
		gateService,
		cfg.Auth.GoogleClientID,
		cfg.Auth.GoogleClientSecret,
		cfg.App.BaseURL+"/api/auth/google/callback",
	)

	// 6. Controllers
	chatController := controller.NewChatController(chatService)
	gateController := controller.NewGateController(gateService)
	authController := controller.NewAuthController(authService)
	oauthController := controller.NewOAuthController(oauthService)

	return &Container{
		ChatController:  chatController,
		GateController:  gateController,
		AuthController:  authController,
		OAuthController: oauthController,
		ConsumerService: consumerService,
	}
}
