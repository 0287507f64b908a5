// Package notify fans newly created alerts out to the notification pipeline.
// One delivery task is enqueued per active user per channel; downstream
// workers own rendering and delivery.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/beacon/internal/alert"
	"github.com/linnemanlabs/beacon/internal/source"
)

// Channel is a delivery medium for one task.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Task is one delivery unit on the notification topic.
type Task struct {
	AlertID   string    `json:"alert_id"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Channel   Channel   `json:"channel"`
	UserID    string    `json:"user_id"`
	Recipient string    `json:"recipient"`
	CreatedAt time.Time `json:"created_at"`
}

// messageWriter is the slice of kafka.Writer the enqueuer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka enqueues delivery tasks onto a Kafka topic.
type Kafka struct {
	writer messageWriter
	users  source.Users
	logger log.Logger
	now    func() time.Time
}

// NewKafka creates a Kafka enqueuer writing to the given brokers and topic.
func NewKafka(brokers []string, topic string, users source.Users, logger log.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafka(w, users, logger)
}

func newKafka(w messageWriter, users source.Users, logger log.Logger) *Kafka {
	if logger == nil {
		logger = log.Nop()
	}
	return &Kafka{writer: w, users: users, logger: logger, now: time.Now}
}

// AlertCreated enqueues one task per active user per reachable channel. Users
// without an email address get no email task, likewise for SMS and phone.
func (k *Kafka) AlertCreated(ctx context.Context, a *alert.Alert) error {
	recipients, err := k.users.ActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	tasks := buildTasks(a, recipients, k.now().UTC())
	if len(tasks) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(tasks))
	for _, t := range tasks {
		body, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(a.ID),
			Value: body,
		})
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("enqueue %d tasks: %w", len(msgs), err)
	}

	k.logger.Info(ctx, "notification tasks enqueued",
		"alert_id", a.ID, "alert_type", a.Type, "tasks", len(msgs))
	return nil
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	if c, ok := k.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func buildTasks(a *alert.Alert, recipients []source.User, now time.Time) []Task {
	var out []Task
	for _, u := range recipients {
		if u.Email != "" {
			out = append(out, task(a, u, ChannelEmail, u.Email, now))
		}
		if u.Phone != "" {
			out = append(out, task(a, u, ChannelSMS, u.Phone, now))
		}
	}
	return out
}

func task(a *alert.Alert, u source.User, ch Channel, recipient string, now time.Time) Task {
	return Task{
		AlertID:   a.ID,
		AlertType: string(a.Type),
		Severity:  string(a.Severity),
		Title:     a.Title,
		Message:   a.Message,
		Channel:   ch,
		UserID:    u.ID,
		Recipient: recipient,
		CreatedAt: now,
	}
}

// Nop discards all notifications. Used when no brokers are configured.
type Nop struct{}

func (Nop) AlertCreated(context.Context, *alert.Alert) error { return nil }
