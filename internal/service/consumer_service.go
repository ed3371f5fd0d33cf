package service

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-helpdesk-be/pkg/events"
	pkgNats "ai-helpdesk-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains reindex requests off the in-process bus and
// runs the rebuild sequentially, so concurrent API calls cannot trigger
// overlapping rebuilds.
type consumerService struct {
	pubSub           *gochannel.GoChannel
	knowledgeService IKnowledgeService
	eventPublisher   *pkgNats.Publisher
}

func NewConsumerService(pubSub *gochannel.GoChannel, knowledgeService IKnowledgeService, eventPublisher *pkgNats.Publisher) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		knowledgeService: knowledgeService,
		eventPublisher:   eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, ReindexTopic)
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
	requestedBy := string(msg.Payload)
	log.Printf("[INFO] Rebuilding knowledge index (requested by %s)", requestedBy)

	if err := cs.knowledgeService.RebuildIndex(ctx); err != nil {
		log.Printf("[ERROR] Knowledge reindex failed: %v", err)
		// Ack anyway: replaying the same request would fail identically
		// until the underlying problem is fixed.
		msg.Ack()
		return
	}

	if cs.eventPublisher != nil {
		event := events.NewKnowledgeReindex(requestedBy)
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish reindex event: %v", err)
		}
	}

	msg.Ack()
}
