package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/db/models"
	"github.com/khidmaty/khidmaty-backend/pkg/enums"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox/idempotency"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox/payloads"
)

const notificationsConsumer = "notifications-worker"

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches marketplace events and fans them out as bilingual in-app
// notification rows.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notifications fan-out consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notifications subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	handler, handled := c.handlerFor(enums.OutboxEventType(eventType))
	if !handled {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationsConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := handler(ctx, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification fan-out failed", err)
		_ = c.idempotency.Delete(ctx, notificationsConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

type payloadHandler func(ctx context.Context, data json.RawMessage, logCtx context.Context) error

func (c *Consumer) handlerFor(eventType enums.OutboxEventType) (payloadHandler, bool) {
	switch eventType {
	case enums.EventNotificationRequested:
		return c.handleNotificationRequested, true
	case enums.EventBookingCountered:
		return c.handleBookingCountered, true
	case enums.EventQuoteSubmitted:
		return c.handleQuoteSubmitted, true
	default:
		return nil, false
	}
}

func (c *Consumer) handleNotificationRequested(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse notification payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	if !payload.Type.IsValid() {
		return fmt.Errorf("invalid notification type %q", payload.Type)
	}

	if err := c.create(ctx, payload.UserID, payload.Type, copyFor(payload.Type), payload.Link); err != nil {
		return err
	}
	c.logg.Info(logCtx, "notification created")
	return nil
}

func (c *Consumer) handleBookingCountered(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.BookingCounteredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse booking payload: %w", err)
	}
	if payload.BuyerID == uuid.Nil {
		return fmt.Errorf("buyer id missing")
	}

	link := fmt.Sprintf("/bookings/%s", payload.BookingID)
	if err := c.create(ctx, payload.BuyerID, enums.NotificationTypeBookingResponse, bookingCounteredCopy(payload.CounterPrice), link); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithField(logCtx, "booking_id", payload.BookingID.String()), "buyer notified of counter-offer")
	return nil
}

func (c *Consumer) handleQuoteSubmitted(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.QuoteSubmittedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse quote payload: %w", err)
	}
	if payload.BuyerID == uuid.Nil {
		return fmt.Errorf("buyer id missing")
	}

	link := fmt.Sprintf("/requests/%s", payload.RequestID)
	if err := c.create(ctx, payload.BuyerID, enums.NotificationTypeQuoteReceived, quoteSubmittedCopy(payload.Price), link); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithField(logCtx, "request_id", payload.RequestID.String()), "buyer notified of new quote")
	return nil
}

func (c *Consumer) create(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, text notificationCopy, link string) error {
	notification := &models.Notification{
		UserID:    userID,
		Type:      notificationType,
		TitleEn:   text.TitleEn,
		TitleAr:   text.TitleAr,
		MessageEn: text.MessageEn,
		MessageAr: text.MessageAr,
	}
	if link != "" {
		notification.Link = &link
	}
	return c.repo.Create(ctx, notification)
}
