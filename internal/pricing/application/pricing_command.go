package application

import (
	"context"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// MarketDataCommandService 处理行情快照的写入命令
// 解析失败时当前快照保持不变；替换成功后发布领域事件，发布失败只记录日志
type MarketDataCommandService struct {
	repo      domain.SnapshotRepository
	publisher domain.EventPublisher
	metrics   Recorder
}

// NewMarketDataCommandService 构造函数。
func NewMarketDataCommandService(repo domain.SnapshotRepository, publisher domain.EventPublisher, metrics Recorder) *MarketDataCommandService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &MarketDataCommandService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
	}
}

// PutSnapshot 解析并整体替换行情快照
func (c *MarketDataCommandService) PutSnapshot(ctx context.Context, cmd PutMarketDataCommand) (*domain.Snapshot, error) {
	parsed, err := domain.ParseSnapshot(cmd.Payload)
	if err != nil {
		c.metrics.RecordUpload(outcome(err))
		logger.Warn(ctx, "market data rejected",
			"source", cmd.Source,
			"bytes", len(cmd.Payload),
			"kind", domain.KindOf(err),
			"error", err,
		)
		return nil, err
	}

	current := c.repo.Replace(parsed)
	c.metrics.RecordUpload(outcome(nil))
	c.metrics.SetSnapshot(current.Version, len(current.Rows))
	logger.Info(ctx, "market data replaced",
		"source", cmd.Source,
		"version", current.Version,
		"rows", len(current.Rows),
		"symbols", current.Symbols(),
	)

	if c.publisher != nil {
		event := domain.NewMarketDataReplacedEvent(current)
		if err := c.publisher.PublishMarketDataReplaced(ctx, event); err != nil {
			logger.Error(ctx, "failed to publish market data event", "version", current.Version, "error", err)
		}
	}
	return current, nil
}
