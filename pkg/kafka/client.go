// Package kafka 提供了把聊天事件发布到 Kafka 的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"smart-chat-go/internal/config"
	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 kafka.Writer 中被使用的子集，便于测试替换。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher 把 model.ChatEvent 序列化为 JSON 写入指定主题，以会话 ID 作为消息 key。
type EventPublisher struct {
	writer messageWriter
}

// NewEventPublisher 初始化 Kafka 生产者。brokers 为逗号分隔的地址列表。
func NewEventPublisher(cfg config.KafkaConfig) *EventPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(SplitBrokers(cfg.Brokers)...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	log.Infof("Kafka 生产者初始化成功, topic: %s", cfg.Topic)
	return &EventPublisher{writer: w}
}

// Publish 发送一条聊天事件。
func (p *EventPublisher) Publish(ctx context.Context, event model.ChatEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chat event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write chat event: %w", err)
	}
	return nil
}

// Close 刷新并关闭生产者。
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// SplitBrokers 解析逗号分隔的 broker 列表，忽略空项。
func SplitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
