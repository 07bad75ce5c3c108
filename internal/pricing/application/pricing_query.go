package application

import (
	"context"
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// PricingQueryService 处理行情读取与定价查询（Queries）。
// 每次调用只读取一次快照，整个计算基于同一时点的数据
type PricingQueryService struct {
	repo         domain.SnapshotRepository
	today        func() time.Time
	riskFreeRate float64
	metrics      Recorder
}

// NewPricingQueryService 构造函数。
func NewPricingQueryService(repo domain.SnapshotRepository, today func() time.Time, riskFreeRate float64, metrics Recorder) *PricingQueryService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &PricingQueryService{
		repo:         repo,
		today:        today,
		riskFreeRate: riskFreeRate,
		metrics:      metrics,
	}
}

// GetSnapshot 返回当前快照
func (q *PricingQueryService) GetSnapshot(_ context.Context) *SnapshotDTO {
	s := q.repo.Load()
	dto := &SnapshotDTO{Rows: []domain.MarketDataRow{}}
	if s == nil {
		return dto
	}
	dto.Version = s.Version
	dto.UploadedAt = s.UploadedAt
	if s.Rows != nil {
		dto.Rows = s.Rows
	}
	return dto
}

// PriceEuropean 欧式期货期权定价
func (q *PricingQueryService) PriceEuropean(ctx context.Context, query PriceOptionQuery) (*domain.PricingResult, error) {
	start := time.Now()
	res, err := domain.PriceEuropean(q.repo.Load(), domain.PricingRequest{
		Symbol:     query.Symbol,
		Tenor:      query.Tenor,
		OptionType: query.OptionType,
		Strike:     query.Strike,
	}, domain.Valuation{
		Today:        q.today(),
		RiskFreeRate: q.riskFreeRate,
	})
	q.metrics.RecordPricing(query.Symbol, outcome(err), time.Since(start))

	if err != nil {
		logger.Debug(ctx, "pricing failed",
			"symbol", query.Symbol,
			"tenor", query.Tenor,
			"option_type", query.OptionType,
			"strike", query.Strike,
			"kind", domain.KindOf(err),
			"error", err,
		)
		return nil, err
	}

	logger.Debug(ctx, "option priced",
		"symbol", res.Symbol,
		"tenor", res.Tenor,
		"option_type", res.OptionType,
		"strike", res.Strike,
		"premium", res.Premium,
		"volatility", res.Volatility,
		"expired", res.Expired,
	)
	return res, nil
}

// InterpolateVolatility 插值波动率查询
func (q *PricingQueryService) InterpolateVolatility(ctx context.Context, query VolatilityQuery) (*domain.VolatilityQuote, error) {
	quote, err := domain.InterpolateVolatility(q.repo.Load(), query.Symbol, query.Tenor, query.Strike, q.today())
	if err != nil {
		logger.Debug(ctx, "volatility interpolation failed",
			"symbol", query.Symbol,
			"tenor", query.Tenor,
			"strike", query.Strike,
			"error", err,
		)
		return nil, err
	}
	return quote, nil
}
