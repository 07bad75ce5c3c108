package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/internal/pricing/infrastructure/persistence/memory"
)

const brnAndHH = `[
  {"Symbol":"BRN","FuturesPrice":[80],"Tenors":["Jan24"],"SmileCallDeltas":[0.25,0.5,0.75],"VolatilitySurface":[[30,25,22]]},
  {"Symbol":"HH","FuturesPrice":[3.1],"Tenors":["Mar24"],"SmileCallDeltas":[0.25,0.5,0.75],"VolatilitySurface":[[60,55,58]]}
]`

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.MarketDataReplacedEvent
	err    error
}

func (p *recordingPublisher) PublishMarketDataReplaced(_ context.Context, e domain.MarketDataReplacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type countingRecorder struct {
	pricing map[string]int
	uploads map[string]int
	version uint64
	rows    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{pricing: map[string]int{}, uploads: map[string]int{}}
}

func (r *countingRecorder) RecordPricing(_ string, result string, _ time.Duration) {
	r.pricing[result]++
}
func (r *countingRecorder) RecordUpload(result string) { r.uploads[result]++ }
func (r *countingRecorder) SetSnapshot(v uint64, rows int) {
	r.version, r.rows = v, rows
}

func newTestService(pub domain.EventPublisher, rec Recorder) *PricingService {
	return NewPricingService(Options{
		Repo:         memory.NewSnapshotRepository(),
		Publisher:    pub,
		Metrics:      rec,
		Today:        func() time.Time { return time.Date(2023, 3, 16, 0, 0, 0, 0, time.UTC) },
		RiskFreeRate: 0.01,
	})
}

func TestGetSnapshotBeforeUpload(t *testing.T) {
	svc := newTestService(nil, nil)
	dto := svc.GetSnapshot(context.Background())
	if dto.Version != 0 || len(dto.Rows) != 0 || dto.Rows == nil {
		t.Fatalf("unexpected initial snapshot: %+v", dto)
	}
}

func TestPutSnapshotPublishesAndReplaces(t *testing.T) {
	pub := &recordingPublisher{}
	rec := newCountingRecorder()
	svc := newTestService(pub, rec)
	ctx := context.Background()

	s, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(brnAndHH), Source: "test"})
	if err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if s.Version != 1 || len(s.Rows) != 2 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if got := svc.GetSnapshot(ctx); len(got.Rows) != 2 || got.Rows[0].Symbol != "BRN" || got.Rows[1].Symbol != "HH" {
		t.Fatalf("snapshot does not contain both symbols: %+v", got.Rows)
	}

	// 第二次上传完全替换第一次
	second := `[{"Symbol":"HH","FuturesPrice":[2.9],"Tenors":["Apr24"],"SmileCallDeltas":[0.5],"VolatilitySurface":[[50]]}]`
	if _, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(second)}); err != nil {
		t.Fatalf("second PutSnapshot: %v", err)
	}
	got := svc.GetSnapshot(ctx)
	if got.Version != 2 || len(got.Rows) != 1 || got.Rows[0].Tenors[0] != "Apr24" {
		t.Fatalf("second upload did not fully replace the first: %+v", got)
	}
	if _, err := svc.PriceEuropean(ctx, PriceOptionQuery{"BRN", "Jan24", "call", 80}); !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Fatalf("BRN should be gone after replacement, got %v", err)
	}

	if len(pub.events) != 2 || pub.events[0].Version != 1 || pub.events[1].Version != 2 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
	if pub.events[0].Rows != 2 || len(pub.events[0].Symbols) != 2 {
		t.Fatalf("unexpected first event %+v", pub.events[0])
	}
	if rec.uploads["ok"] != 2 || rec.version != 2 || rec.rows != 1 {
		t.Fatalf("unexpected upload metrics %+v", rec)
	}
}

func TestPutSnapshotRejectedKeepsPrevious(t *testing.T) {
	pub := &recordingPublisher{}
	rec := newCountingRecorder()
	svc := newTestService(pub, rec)
	ctx := context.Background()

	if _, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(brnAndHH)}); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"unknown field", `[{"Symbol":"BRN","Strikes":[1]}]`, domain.ErrUnknownField},
		{"not json", `Symbol,FuturesPrice`, domain.ErrMalformedPayload},
		{"inconsistent", `[{"Symbol":"BRN","Tenors":["Jan24"],"FuturesPrice":[]}]`, domain.ErrInconsistentRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(tt.payload)})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			got := svc.GetSnapshot(ctx)
			if got.Version != 1 || len(got.Rows) != 2 {
				t.Fatalf("prior snapshot changed: %+v", got)
			}
		})
	}

	if len(pub.events) != 1 {
		t.Fatalf("rejected uploads must not publish, got %d events", len(pub.events))
	}
	if rec.uploads["UnknownField"] != 1 || rec.uploads["MalformedPayload"] != 1 {
		t.Fatalf("unexpected upload outcomes %v", rec.uploads)
	}
}

func TestPutSnapshotPublishFailureDoesNotFail(t *testing.T) {
	svc := newTestService(&recordingPublisher{err: errors.New("kafka down")}, nil)
	if _, err := svc.PutSnapshot(context.Background(), PutMarketDataCommand{Payload: []byte(brnAndHH)}); err != nil {
		t.Fatalf("publish failure must not fail the upload: %v", err)
	}
	if svc.GetSnapshot(context.Background()).Version != 1 {
		t.Fatalf("snapshot not stored")
	}
}

func TestPriceEuropean(t *testing.T) {
	rec := newCountingRecorder()
	svc := newTestService(nil, rec)
	ctx := context.Background()

	if _, err := svc.PriceEuropean(ctx, PriceOptionQuery{"BRN", "Jan24", "Call", 80}); !errors.Is(err, domain.ErrNoMarketData) {
		t.Fatalf("expected NoMarketData before upload, got %v", err)
	}
	if _, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(brnAndHH)}); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	res, err := svc.PriceEuropean(ctx, PriceOptionQuery{"BRN", "Jan24", "Call", 80})
	if err != nil {
		t.Fatalf("PriceEuropean: %v", err)
	}
	if !(res.Premium > 0) || math.IsInf(res.Premium, 0) {
		t.Fatalf("premium %v, want finite positive", res.Premium)
	}

	for _, ot := range []string{"call", "put"} {
		res, err := svc.PriceEuropean(ctx, PriceOptionQuery{"HH", "Mar23", ot, 3})
		if err != nil {
			t.Fatalf("expired %s: %v", ot, err)
		}
		if res.Premium != 0 {
			t.Fatalf("expired %s premium %v, want 0", ot, res.Premium)
		}
	}

	if rec.pricing["ok"] != 3 || rec.pricing["NoMarketData"] != 1 {
		t.Fatalf("unexpected pricing outcomes %v", rec.pricing)
	}
}

func TestInterpolateVolatility(t *testing.T) {
	svc := newTestService(nil, nil)
	ctx := context.Background()
	if _, err := svc.PutSnapshot(ctx, PutMarketDataCommand{Payload: []byte(brnAndHH)}); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	q, err := svc.InterpolateVolatility(ctx, VolatilityQuery{"HH", "Mar24", 3.1})
	if err != nil {
		t.Fatalf("InterpolateVolatility: %v", err)
	}
	for i, k := range q.Smile.Strikes {
		kq, err := svc.InterpolateVolatility(ctx, VolatilityQuery{"HH", "Mar24", k})
		if err != nil {
			t.Fatalf("knot %d: %v", i, err)
		}
		if math.Abs(kq.Volatility-q.Smile.Vols[i]) > 1e-12 {
			t.Fatalf("knot %d: vol %v, want %v", i, kq.Volatility, q.Smile.Vols[i])
		}
	}

	if _, err := svc.InterpolateVolatility(ctx, VolatilityQuery{"HH", "Jan30", 3}); !errors.Is(err, domain.ErrTenorNotFound) {
		t.Fatalf("expected TenorNotFound, got %v", err)
	}
}
