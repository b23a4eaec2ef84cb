package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/config"
	"github.com/spec-kit/farm-portal/internal/events"
)

// NotificationService logs ledger and request events and forwards them to an
// optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSaleRecorded, n.handleLedgerEntry)
	n.dispatcher.Subscribe(events.EventPaymentRecorded, n.handleLedgerEntry)
	n.dispatcher.Subscribe(events.EventRequestSubmitted, n.handleRequestSubmitted)
	n.dispatcher.Subscribe(events.EventRequestApproved, n.handleRequestDecided)
	n.dispatcher.Subscribe(events.EventRequestRejected, n.handleRequestDecided)
}

func (n *NotificationService) handleLedgerEntry(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("user_id", event.UserID), zap.String("event_type", string(event.Type))}
	if p, ok := event.Payload.(events.LedgerPayload); ok {
		fields = append(fields,
			zap.String("transaction_id", p.Transaction.ID),
			zap.String("total", p.Transaction.Total.String()),
			zap.String("final_balance", p.Transaction.FinalBalance.String()))
	}
	n.logger.Info("LedgerEntryRecorded", fields...)
	n.notify(event)
	return nil
}

// handleRequestSubmitted tells the admin a new request is waiting.
func (n *NotificationService) handleRequestSubmitted(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("user_id", event.UserID)}
	if p, ok := event.Payload.(events.RequestPayload); ok {
		fields = append(fields, zap.String("request_id", p.Request.ID), zap.String("type", string(p.Request.Type)))
	}
	n.logger.Info("RequestSubmitted", fields...)
	n.notify(event)
	return nil
}

// handleRequestDecided tells the customer how their request went.
func (n *NotificationService) handleRequestDecided(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.String("user_id", event.UserID), zap.String("event_type", string(event.Type))}
	if p, ok := event.Payload.(events.RequestPayload); ok {
		fields = append(fields, zap.String("request_id", p.Request.ID), zap.String("status", string(p.Request.Status)))
	}
	n.logger.Info("RequestDecided", fields...)
	n.notify(event)
	return nil
}

// webhookNotification is the body posted to the configured webhook.
type webhookNotification struct {
	ID        string           `json:"id"`
	Type      events.EventType `json:"type"`
	UserID    string           `json:"userId"`
	Timestamp time.Time        `json:"timestamp"`
}

const webhookTimeout = 5 * time.Second

// notify posts event to the webhook in the background. Delivery is best
// effort and never fails the operation that raised the event.
func (n *NotificationService) notify(event events.Event) {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return
	}
	body := webhookNotification{ID: event.ID, Type: event.Type, UserID: event.UserID, Timestamp: event.Timestamp}
	go func() {
		agent := fiber.Post(url).JSON(body).Timeout(webhookTimeout)
		if err := agent.Parse(); err != nil {
			n.logger.Warn("webhook request", zap.String("event_id", event.ID), zap.Error(err))
			return
		}
		code, _, errs := agent.Bytes()
		if len(errs) > 0 {
			n.logger.Warn("webhook delivery failed", zap.String("event_id", event.ID), zap.Errors("errors", errs))
			return
		}
		if code >= fiber.StatusBadRequest {
			n.logger.Warn("webhook rejected notification", zap.String("event_id", event.ID), zap.Int("status", code))
			return
		}
		n.logger.Debug("webhook delivered", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	}()
}
