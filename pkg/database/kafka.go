package database

import (
	"context"
	"fmt"
	"time"

	"realtime_chat_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry 建立 Kafka Writer 並確認 broker 可連線
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var err error

	attempts := max(k.RetryCount, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(k.Brokers...),
			Topic:                  k.Topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = probeKafka(ctx, k.Brokers[0])
		cancel()
		if err == nil {
			logger.Log.Info("Kafka writer ready", zap.Strings("brokers", k.Brokers), zap.Int("attempt", attempt))
			return writer, nil
		}

		logger.Log.Warn("Kafka writer not ready, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max", attempts),
			zap.Error(err),
		)
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("kafka writer unavailable after %d attempts: %w", attempts, err)
}

func probeKafka(ctx context.Context, broker string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Brokers()
	return err
}
