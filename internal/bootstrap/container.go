package bootstrap

import (
	"context"
	"log"

	"ai-topic-assist-be/internal/config"
	"ai-topic-assist-be/internal/controller"
	"ai-topic-assist-be/internal/handler"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/repository/memory"
	"ai-topic-assist-be/internal/repository/unitofwork"
	"ai-topic-assist-be/internal/service"
	"ai-topic-assist-be/internal/websocket"
	"ai-topic-assist-be/pkg/events"
	"ai-topic-assist-be/pkg/llm/factory"
	pktNats "ai-topic-assist-be/pkg/nats"
	"ai-topic-assist-be/pkg/topicassist"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// MessageSentTopic is the in-process topic carrying confirmed sends.
const MessageSentTopic = "topic_assist.message_sent"

type Container struct {
	// Controllers
	MessageController     controller.IMessageController
	AiController          controller.IAiController
	TopicAssistController controller.ITopicAssistController
	DiagnosticsController controller.IDiagnosticsController

	// Background Services (Exposed for main.go to run)
	IntakeService  service.IIntakeService
	AssistSessions service.IAssistSessionService

	// WebSockets
	PushHandler  *handler.PushHandler
	WebSocketHub *websocket.Hub

	SysLogger  logger.ILogger
	DiagLogger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
	pubSub  *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	diagLogger := logger.NewIsolatedLogger(cfg.App.DiagnosticLogPath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM backend, paced by one limiter shared by both AI services
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.LLM,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if llmProvider == nil {
		log.Printf("[INFO] No LLM Provider configured, heuristic fallbacks only")
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}
	limiter := newLLMLimiter(cfg.Ai.RequestsPerMin, cfg.Ai.RequestBurst)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}
	// A nil *Publisher inside the interface would not compare equal to nil.
	var eventPublisher events.Publisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// Redis
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

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, diagLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(MessageSentTopic, pubSub)
	messageService := service.NewMessageService(uowFactory, publisherService, eventPublisher, sysLogger)
	improverService := service.NewTopicImproverService(uowFactory, llmProvider, limiter, cfg.Ai.RequestTimeout, sysLogger)
	recapService := service.NewRecapService(uowFactory, llmProvider, limiter, cfg.Ai.RequestTimeout, sysLogger)

	var assistSessions service.IAssistSessionService
	var intakeService service.IIntakeService
	if cfg.TopicAssist.ServerSessions {
		sessions := memory.NewAssistSessionRepository(cfg.TopicAssist.SessionTTL)
		assistSessions = service.NewAssistSessionService(
			sessions,
			assistSettings(cfg.TopicAssist),
			improverService,
			messageService,
			wsHub, // Hub implements SuggestionDelivery
			eventPublisher,
			diagLogger,
		)
		intakeService = service.NewIntakeService(pubSub, MessageSentTopic, assistSessions, diagLogger)

		if natsSub != nil {
			if err := intakeService.StartExternal(natsSub); err != nil {
				log.Printf("[WARN] Failed to subscribe to external sends: %v", err)
			}
		}
	} else {
		log.Printf("[INFO] Server-hosted topic assistant disabled")
	}

	// 6. Controllers
	return &Container{
		MessageController:     controller.NewMessageController(messageService),
		AiController:          controller.NewAiController(improverService, recapService),
		TopicAssistController: controller.NewTopicAssistController(assistSessions),
		DiagnosticsController: controller.NewDiagnosticsController(diagLogger),

		IntakeService:  intakeService,
		AssistSessions: assistSessions,

		PushHandler:  handler.NewPushHandler(wsHub, diagLogger),
		WebSocketHub: wsHub,

		SysLogger:  sysLogger,
		DiagLogger: diagLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
		pubSub:  pubSub,
	}
}

// Close stops background work and releases connections, sessions first so no
// controller is left dispatching into a closed transport.
func (c *Container) Close() {
	if c.AssistSessions != nil {
		c.AssistSessions.Shutdown()
	}
	c.WebSocketHub.Stop()
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.rdb.Close(); err != nil {
		log.Printf("[WARN] Failed to close Redis: %v", err)
	}
	_ = c.DiagLogger.Sync()
	_ = c.SysLogger.Sync()
}

func assistSettings(cfg config.TopicAssistConfig) topicassist.Settings {
	return topicassist.Settings{
		BatchThreshold:      cfg.BatchThreshold,
		CooldownWindow:      cfg.CooldownWindow,
		MaxIdsSent:          cfg.MaxIdsSent,
		MinWordLen:          cfg.MinWordLen,
		PrecheckSimilarity:  cfg.PrecheckSimilarity,
		PostcheckSimilarity: cfg.PostcheckSimilarity,
		Stopwords:           cfg.Stopwords,
	}
}

func newLLMLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
}
