package application

import (
	"context"
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
)

// Options 定价服务依赖
type Options struct {
	Repo         domain.SnapshotRepository
	Publisher    domain.EventPublisher
	Metrics      Recorder
	Today        func() time.Time
	RiskFreeRate float64
}

// PricingService 定价门面服务。
type PricingService struct {
	Command *MarketDataCommandService
	Query   *PricingQueryService
}

// NewPricingService 构造函数。
func NewPricingService(opts Options) *PricingService {
	today := opts.Today
	if today == nil {
		today = func() time.Time {
			now := time.Now().UTC()
			return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return &PricingService{
		Command: NewMarketDataCommandService(opts.Repo, opts.Publisher, opts.Metrics),
		Query:   NewPricingQueryService(opts.Repo, today, opts.RiskFreeRate, opts.Metrics),
	}
}

// --- Command Facade ---

func (s *PricingService) PutSnapshot(ctx context.Context, cmd PutMarketDataCommand) (*domain.Snapshot, error) {
	return s.Command.PutSnapshot(ctx, cmd)
}

// --- Query Facade ---

func (s *PricingService) GetSnapshot(ctx context.Context) *SnapshotDTO {
	return s.Query.GetSnapshot(ctx)
}

func (s *PricingService) PriceEuropean(ctx context.Context, query PriceOptionQuery) (*domain.PricingResult, error) {
	return s.Query.PriceEuropean(ctx, query)
}

func (s *PricingService) InterpolateVolatility(ctx context.Context, query VolatilityQuery) (*domain.VolatilityQuote, error) {
	return s.Query.InterpolateVolatility(ctx, query)
}
