package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Codeshift/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunStarted   MessageType = "run.started"
	MessageTypeRunFinished  MessageType = "run.finished"
	MessageTypeFileUpdated  MessageType = "file.updated"
	MessageTypeFileLog      MessageType = "file.log"
	MessageTypeRunRequested MessageType = "run.requested"
)

// Message — конверт всех сообщений.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// FileUpdatedPayload — событие изменения записи файла.
type FileUpdatedPayload struct {
	RunID uuid.UUID         `json:"run_id"`
	File  domain.FileRecord `json:"file"`
}

// FileLogPayload — событие дописывания лога файла.
type FileLogPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	FileName string    `json:"file_name"`
	Text     string    `json:"text"`
}

// RunRequestedPayload — команда запуска стадии.
type RunRequestedPayload struct {
	Kind        string `json:"kind"`
	Prompt      string `json:"prompt,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishRunStarted публикует run.started.
func (p *Publisher) PublishRunStarted(ctx context.Context, run *domain.Run) error {
	return p.Publish(ctx, ExchangeEvents, RoutingKeyRunStarted, NewMessage(MessageTypeRunStarted, run))
}

// PublishRunFinished публикует run.finished.
func (p *Publisher) PublishRunFinished(ctx context.Context, run *domain.Run) error {
	return p.Publish(ctx, ExchangeEvents, RoutingKeyRunFinished, NewMessage(MessageTypeRunFinished, run))
}

// PublishFileUpdated публикует file.updated с полной записью файла.
func (p *Publisher) PublishFileUpdated(ctx context.Context, runID uuid.UUID, file domain.FileRecord) error {
	payload := FileUpdatedPayload{RunID: runID, File: file}
	return p.Publish(ctx, ExchangeEvents, RoutingKeyFileUpdated, NewMessage(MessageTypeFileUpdated, payload))
}

// PublishFileLog публикует file.log.
func (p *Publisher) PublishFileLog(ctx context.Context, runID uuid.UUID, fileName, text string) error {
	payload := FileLogPayload{RunID: runID, FileName: fileName, Text: text}
	return p.Publish(ctx, ExchangeEvents, RoutingKeyFileLog, NewMessage(MessageTypeFileLog, payload))
}

// PublishRunRequested ставит команду запуска в очередь runs.requested.
func (p *Publisher) PublishRunRequested(ctx context.Context, payload RunRequestedPayload) error {
	return p.Publish(ctx, ExchangeCommands, RoutingKeyRunRequested, NewMessage(MessageTypeRunRequested, payload))
}
