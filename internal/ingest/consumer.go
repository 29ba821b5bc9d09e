// Package ingest consumes producer events from kafka and feeds them to the
// notification service. Feature services publish one message per event; this
// consumer is the out-of-process flavor of calling Notify directly.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/studypulse/notify-engine/internal/notify/application"
	"github.com/studypulse/notify-engine/internal/notify/domain"
	"github.com/studypulse/notify-engine/internal/notify/template"
)

// Notifier is the slice of the notification service the consumer drives.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind domain.Kind, payload domain.Payload) (application.NotifyResult, error)
}

// Event is the wire format feature services publish.
type Event struct {
	UserID  string         `json:"user_id"`
	Kind    string         `json:"kind"`
	Payload domain.Payload `json:"payload"`
}

type Consumer struct {
	reader   *kafka.Reader
	notifier Notifier
	logger   *slog.Logger
}

func NewConsumer(brokers, groupID, topic string, notifier Notifier, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        strings.Split(brokers, ","),
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		notifier: notifier,
		logger:   logger,
	}
}

// Run fetches and handles messages until ctx is canceled. Malformed events
// are logged and committed so a poison message cannot wedge the group;
// notify failures (persistence) leave the message uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		_ = c.reader.Close()
	}()

	c.logger.Info("kafka consumer started",
		"group", c.reader.Config().GroupID, "topic", c.reader.Config().Topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer shutting down")
				return nil
			}
			c.logger.Error("kafka fetch failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		if err := c.handle(ctx, m.Value); err != nil {
			c.logger.Error("notify from kafka event failed", "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("kafka commit failed", "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		c.logger.Warn("dropping malformed event", "error", err)
		return nil
	}
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		c.logger.Warn("dropping event with bad user id", "user_id", event.UserID)
		return nil
	}
	kind := domain.Kind(event.Kind)
	if !template.Known(kind) {
		c.logger.Warn("dropping event with unknown kind", "kind", event.Kind)
		return nil
	}
	_, err = c.notifier.Notify(ctx, userID, kind, event.Payload)
	return err
}
