// Package events publishes domain events (claim submitted/reviewed, ledger writes,
// employee and booking changes) for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	ClaimSubmitted      = "claim.submitted"
	ClaimReviewed       = "claim.reviewed"
	TransactionRecorded = "transaction.recorded"
	EmployeeCreated     = "employee.created"
	EmployeeUpdated     = "employee.updated"
	EmployeeDeleted     = "employee.deleted"
	BookingCreated      = "booking.created"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CompanyID  string    `json:"company_id"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func New(typ, companyID, entityID, actorID string, payload any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       typ,
		CompanyID:  companyID,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// =========================
// KAFKA
// =========================

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: PublishTimeout,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish keys messages by entity so all events of one claim land on one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.EntityID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
		Time: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// =========================
// LOG ONLY
// =========================

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher { return &LogPublisher{logger: logger} }

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.logger.Info("event",
		zap.String("type", e.Type),
		zap.String("entity_id", e.EntityID),
		zap.String("company_id", e.CompanyID),
		zap.String("actor_id", e.ActorID),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// PublishTimeout bounds one Emit independently of the request that caused it.
const PublishTimeout = 2 * time.Second

// Emit publishes e and logs instead of failing; the state change it describes is
// already committed. The publish outlives a cancelled request but never runs
// longer than PublishTimeout.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, e Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn("event publish failed", zap.String("type", e.Type), zap.Error(err))
	}
}
