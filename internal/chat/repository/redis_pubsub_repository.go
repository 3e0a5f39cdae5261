package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MemberChannel redis channel a member's connection listens on
func MemberChannel(memberID string) string {
	return "chat:user:" + memberID
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish 將 envelope 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, env domain.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe 訂閱 channel 直到 ctx 結束, 訂閱確認後才返回
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(env domain.Envelope)) error {
	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var env domain.Envelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					logger.Log.Error("decode envelope failed", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(env)
			case <-ctx.Done():
				logger.Log.Debug("sub close", zap.String("channel", channel))
				return
			}
		}
	}()
	return nil
}
