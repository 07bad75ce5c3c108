// Package messaging 行情快照领域事件的发布实现
package messaging

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// Sender 消息发送者，由 mq.KafkaProducer 实现
type Sender interface {
	SendMessage(ctx context.Context, topic string, key string, value any, headers map[string]string) error
}

// KafkaEventPublisher 将领域事件发布到 Kafka topic，key 为快照版本号
type KafkaEventPublisher struct {
	sender  Sender
	topic   string
	timeout time.Duration
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(sender Sender, topic string, timeout time.Duration) *KafkaEventPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaEventPublisher{sender: sender, topic: topic, timeout: timeout}
}

// PublishMarketDataReplaced 发布行情快照替换事件
func (p *KafkaEventPublisher) PublishMarketDataReplaced(ctx context.Context, event domain.MarketDataReplacedEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	key := strconv.FormatUint(event.Version, 10)
	headers := map[string]string{"event_type": domain.MarketDataReplacedEventType}
	if err := p.sender.SendMessage(ctx, p.topic, key, event, headers); err != nil {
		return fmt.Errorf("publish %s v%d: %w", domain.MarketDataReplacedEventType, event.Version, err)
	}

	logger.Debug(ctx, "market data event published", "topic", p.topic, "version", event.Version)
	return nil
}

// NopEventPublisher 未启用 Kafka 时使用，丢弃事件
type NopEventPublisher struct{}

// PublishMarketDataReplaced 丢弃事件
func (NopEventPublisher) PublishMarketDataReplaced(ctx context.Context, event domain.MarketDataReplacedEvent) error {
	logger.Debug(ctx, "market data event dropped, kafka disabled", "version", event.Version)
	return nil
}
