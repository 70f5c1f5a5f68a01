package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Message is an outgoing email handed to the delivery outbox
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// MessageSender hands a message to whatever delivers it
type MessageSender interface {
	Send(ctx context.Context, msg Message) error
}

const outboxMaxLen = 10000

// RedisStreamSender appends messages to a Redis stream consumed by the mail relay
type RedisStreamSender struct {
	redisClient *redis.Client
	stream      string
}

func NewRedisStreamSender(redisClient *redis.Client, stream string) *RedisStreamSender {
	return &RedisStreamSender{redisClient: redisClient, stream: stream}
}

func (s *RedisStreamSender) Send(ctx context.Context, msg Message) error {
	err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: outboxMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"from":    msg.From,
			"to":      msg.To,
			"subject": msg.Subject,
			"body":    msg.Body,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append to stream %s: %w", s.stream, err)
	}
	return nil
}
