package domain

import "time"

const (
	MarketDataReplacedEventType = "MarketDataReplaced"
)

// MarketDataReplacedEvent 行情快照被整体替换事件
type MarketDataReplacedEvent struct {
	Version    uint64    `json:"version"`
	Symbols    []string  `json:"symbols"`
	Rows       int       `json:"rows"`
	UploadedAt time.Time `json:"uploaded_at"`
	OccurredOn time.Time `json:"occurred_on"`
}

// NewMarketDataReplacedEvent 由快照生成替换事件
func NewMarketDataReplacedEvent(s *Snapshot) MarketDataReplacedEvent {
	return MarketDataReplacedEvent{
		Version:    s.Version,
		Symbols:    s.Symbols(),
		Rows:       len(s.Rows),
		UploadedAt: s.UploadedAt,
		OccurredOn: time.Now(),
	}
}
