package bootstrap

import (
	"context"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ai-helpdesk-be/internal/config"
	"ai-helpdesk-be/internal/controller"
	"ai-helpdesk-be/internal/pkg/logger"
	"ai-helpdesk-be/internal/pkg/mailer"
	"ai-helpdesk-be/internal/repository/memory"
	"ai-helpdesk-be/internal/repository/unitofwork"
	"ai-helpdesk-be/internal/service"
	"ai-helpdesk-be/internal/websocket"
	"ai-helpdesk-be/pkg/classify"
	"ai-helpdesk-be/pkg/embedding"
	"ai-helpdesk-be/pkg/knowledge"
	"ai-helpdesk-be/pkg/llm/factory"
	pkgNats "ai-helpdesk-be/pkg/nats"
	"ai-helpdesk-be/pkg/retrieval"
	"ai-helpdesk-be/pkg/retrieval/index"
	"ai-helpdesk-be/pkg/scenario"
)

type Container struct {
	// Controllers
	ConversationController controller.IConversationController
	TicketController       controller.ITicketController
	KnowledgeController    controller.IKnowledgeController
	AgentAuthController    controller.IAgentAuthController

	// Background services, run from main
	ConsumerService  service.IConsumerService
	KnowledgeService service.IKnowledgeService

	WebSocketHub *websocket.Hub

	Scenarios map[string]*scenario.Scenario
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	stdLogger := log.New(os.Stdout, "", log.LstdFlags)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider, wrapped in the memoizing cache.
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}
	cachedEmbedder := embedding.NewCachedProvider(embeddingProvider, cfg.Ai.EmbeddingCacheSize)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Scenario corpus, loaded once, fatal on malformed files.
	scenarios, err := scenario.LoadAll(cfg.App.ScenarioDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load scenarios: %v", err)
	}
	log.Printf("[INFO] Loaded %d scenarios from %s", len(scenarios), cfg.App.ScenarioDir)

	// Retrieval stack. The index starts empty and is filled by snapshot,
	// store hydration, or a rebuild in main.
	retriever := retrieval.NewRetriever(cachedEmbedder, index.New(), stdLogger)

	classifier := classify.NewLLMClassifier(llmProvider, stdLogger)

	engineStates := memory.NewEngineStateRepository()

	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
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

	wsLogger := logger.NewIsolatedLogger("logs/alerts.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Scenario selection cascade.
	directRules := []scenario.DirectRule{
		{Field: "router_lights", Contains: []string{"off", "nedega"}, ScenarioID: "internet_no_connection"},
		{Field: "connection_pattern", Contains: []string{"intermittent", "trūkinėja"}, ScenarioID: "internet_intermittent"},
		{Field: "affected_devices", Contains: []string{"one", "single", "vienas"}, ScenarioID: "internet_single_device"},
	}
	defaults := map[string]string{
		"internet": "internet_no_connection",
		"tv":       "tv_no_signal",
	}
	selector := scenario.NewSelector(directRules, retriever, scenarios, defaults, "general_default", stdLogger)

	retrievalDefaults := retrieval.Options{
		TopK:          cfg.Retrieval.TopK,
		Threshold:     cfg.Retrieval.Threshold,
		KeywordWeight: cfg.Retrieval.KeywordWeight,
	}

	builder := knowledge.NewBuilder(cachedEmbedder, stdLogger)
	knowledgeService := service.NewKnowledgeService(
		uowFactory, retriever, builder, cachedEmbedder, scenarios,
		pubSub, cfg.App.KnowledgeDir, cfg.App.IndexSnapshotPath,
		retrievalDefaults, sysLogger,
	)

	ticketService := service.NewTicketService(
		uowFactory, natsPub, emailService, cfg.SMTP.EscalationInbox, wsHub,
	)

	conversationService := service.NewConversationService(
		uowFactory, scenarios, selector, classifier, engineStates,
		ticketService, natsPub, cfg.Engine.MaxTurns, cfg.Engine.MaxFailures, stdLogger,
	)

	agentAuthService := service.NewAgentAuthService(uowFactory, cfg.Auth.TokenTTLHours)

	consumerService := service.NewConsumerService(pubSub, knowledgeService, natsPub)

	return &Container{
		ConversationController: controller.NewConversationController(conversationService),
		TicketController:       controller.NewTicketController(ticketService),
		KnowledgeController:    controller.NewKnowledgeController(knowledgeService),
		AgentAuthController:    controller.NewAgentAuthController(agentAuthService),
		ConsumerService:        consumerService,
		KnowledgeService:       knowledgeService,
		WebSocketHub:           wsHub,
		Scenarios:              scenarios,
	}
}
