package application

import (
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
)

// PutMarketDataCommand 整体替换行情快照命令
type PutMarketDataCommand struct {
	// 原始 JSON 行情
	Payload []byte
	// 来源（文件名或 body），仅用于日志
	Source string
}

// PriceOptionQuery 欧式期权定价查询
type PriceOptionQuery struct {
	Symbol     string
	Tenor      string
	OptionType string
	Strike     float64
}

// VolatilityQuery 插值波动率查询
type VolatilityQuery struct {
	Symbol string
	Tenor  string
	Strike float64
}

// SnapshotDTO 行情快照视图
type SnapshotDTO struct {
	Version    uint64                 `json:"version"`
	UploadedAt time.Time              `json:"uploaded_at"`
	Rows       []domain.MarketDataRow `json:"rows"`
}

// Recorder 应用层指标记录
type Recorder interface {
	RecordPricing(symbol, outcome string, duration time.Duration)
	RecordUpload(outcome string)
	SetSnapshot(version uint64, rows int)
}

type nopRecorder struct{}

func (nopRecorder) RecordPricing(string, string, time.Duration) {}
func (nopRecorder) RecordUpload(string)                         {}
func (nopRecorder) SetSnapshot(uint64, int)                     {}

// outcome 指标结果标签：成功为 ok，失败为错误分类
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal"
}
