package repository

import (
	"context"
	"encoding/json"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
)

// EventStream publishes message lifecycle events to a broker
type EventStream interface {
	Publish(ctx context.Context, event domain.MessageEvent) error
	Close() error
}

// KafkaWriter the part of kafka.Writer the stream needs
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaEventStream struct {
	writer KafkaWriter
}

// NewKafkaEventStream key every record by message id so a message's events stay in one partition
func NewKafkaEventStream(writer KafkaWriter) EventStream {
	return &kafkaEventStream{writer: writer}
}

func (s *kafkaEventStream) Publish(ctx context.Context, event domain.MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.MessageID),
		Value: data,
		Time:  event.At,
	})
}

func (s *kafkaEventStream) Close() error {
	return s.writer.Close()
}

// AMQPChannel the part of amqp.Channel the stream needs
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitEventStream struct {
	channel  AMQPChannel
	exchange string
}

// NewRabbitEventStream declare a durable topic exchange and publish with routing key message.<type>
func NewRabbitEventStream(channel AMQPChannel, exchange string) (EventStream, error) {
	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &rabbitEventStream{channel: channel, exchange: exchange}, nil
}

// RoutingKey routing key of an event on the topic exchange
func RoutingKey(event domain.MessageEvent) string {
	return "message." + string(event.Type)
}

func (s *rabbitEventStream) Publish(_ context.Context, event domain.MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.channel.Publish(s.exchange, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.MessageID,
		Timestamp:    event.At,
		Body:         data,
	})
}

func (s *rabbitEventStream) Close() error {
	return s.channel.Close()
}

type nopEventStream struct{}

// NewNopEventStream discard every event
func NewNopEventStream() EventStream {
	return nopEventStream{}
}

func (nopEventStream) Publish(context.Context, domain.MessageEvent) error { return nil }

func (nopEventStream) Close() error { return nil }

// publishTimeout bound on a single broker write
const publishTimeout = 3 * time.Second

// PublishTimeout context for one broker write, detached from the caller's cancellation
func PublishTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
}
