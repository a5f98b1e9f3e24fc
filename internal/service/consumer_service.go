package service

import (
	"context"
	"encoding/json"
	"time"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/entity"
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/internal/repository/unitofwork"
	"hello-ai-be/pkg/events"
	pkgNats "hello-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the sticky-flush topic: each message becomes a
// durable upsert, then a STICKY_SAVED event on the external bus.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
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
	var payload dto.StickyFlushMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal flush message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages so they don't retry forever.
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	sticky := entity.Sticky{
		Id:            payload.StickyId,
		Content:       payload.Content,
		X:             payload.X,
		Y:             payload.Y,
		Color:         payload.Color,
		OwnerUserId:   payload.OwnerUserId,
		ChatSessionId: payload.ChatSessionId,
		CreatedAt:     time.Now(),
	}

	if err := uow.StickyRepository().Upsert(ctx, &sticky); err != nil {
		cs.logger.Error("ConsumerService", "Sticky upsert failed", map[string]interface{}{
			"sticky_id": payload.StickyId.String(),
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewStickySaved(payload.StickyId, payload.ChatSessionId, payload.OwnerUserId)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			// The write landed; the event is auxiliary fan-out.
			cs.logger.Warn("ConsumerService", "Failed to publish STICKY_SAVED", map[string]interface{}{
				"sticky_id": payload.StickyId.String(),
				"error":     err.Error(),
			})
		}
	}

	cs.logger.Info("ConsumerService", "Sticky flushed", map[string]interface{}{
		"sticky_id":  payload.StickyId.String(),
		"session_id": payload.ChatSessionId.String(),
	})
	msg.Ack()
}
