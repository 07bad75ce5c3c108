package domain

import "context"

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishMarketDataReplaced 发布行情快照替换事件
	PublishMarketDataReplaced(ctx context.Context, event MarketDataReplacedEvent) error
}
