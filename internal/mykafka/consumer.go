package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	orderFeedGroup = "food-order-feed"
	minReadBackoff = 500 * time.Millisecond
	maxReadBackoff = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Notifier is woken with the user id of every order event.
type Notifier interface {
	Notify(userID string)
}

type OrderEvent struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id"`
	OrderID uint   `json:"order_id"`
}

// Consumer reads order events so live order streams on every instance see
// changes made through any other instance.
type Consumer struct {
	reader   messageReader
	notifier Notifier
	log      *slog.Logger
	backoff  time.Duration
}

func NewConsumer(brokers []string, notifier Notifier, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    TopicOrderEvents,
		GroupID:  orderFeedGroup,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, notifier: notifier, log: log, backoff: minReadBackoff}
}

// Run reads until ctx is done or the reader is closed. Read errors are
// retried with exponential backoff.
func (c *Consumer) Run(ctx context.Context) {
	wait := c.backoff
	if wait <= 0 {
		wait = minReadBackoff
	}
	delay := wait
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			if errors.Is(err, io.EOF) {
				c.log.Info("kafka_reader_closed", "topic", TopicOrderEvents)
				return
			}
			c.log.Warn("kafka_read_failed", "topic", TopicOrderEvents, "retry_in", delay.String(), "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxReadBackoff)
			continue
		}
		delay = wait
		if err := c.handle(m); err != nil {
			c.log.Warn("kafka_event_skipped", "topic", m.Topic, "offset", m.Offset, "error", err)
		}
	}
}

func (c *Consumer) handle(m kafka.Message) error {
	var event OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if event.UserID == "" {
		event.UserID = string(m.Key)
	}
	if event.UserID == "" {
		return errors.New("order event without user id")
	}
	c.notifier.Notify(event.UserID)
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
