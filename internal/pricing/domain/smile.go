package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// VolatilitySmile 按行权价升序排列的波动率微笑，波动率为小数
type VolatilitySmile struct {
	Strikes []float64 `json:"strikes"`
	Vols    []float64 `json:"vols"`
}

// DeltaToStrike 将看涨 delta 报价换算为行权价
// d1 = Φ⁻¹(delta/df)，K = F·exp(0.5·σ²·T − σ·d1·√T)
func DeltaToStrike(delta, vol, t, forward, df float64) (float64, error) {
	p := delta / df
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, newError(KindNumericDomainError, "delta %g / discount factor %g is not a probability", delta, df)
	}
	d1 := distuv.UnitNormal.Quantile(p)
	k := forward * math.Exp(0.5*vol*vol*t-vol*d1*math.Sqrt(t))
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, newError(KindNumericDomainError, "strike for delta %g, vol %g is not finite", delta, vol)
	}
	return k, nil
}

// BuildSmile 将 delta 报价的微笑（百分点）换算为按行权价排序的微笑
func BuildSmile(deltas, volsPct []float64, t, forward float64) (*VolatilitySmile, error) {
	if len(deltas) != len(volsPct) {
		return nil, newError(KindInconsistentRow, "smile has %d vols for %d deltas", len(volsPct), len(deltas))
	}

	smile := &VolatilitySmile{
		Strikes: make([]float64, len(deltas)),
		Vols:    make([]float64, len(deltas)),
	}
	for i, delta := range deltas {
		vol := volsPct[i] / 100
		k, err := DeltaToStrike(delta, vol, t, forward, 1)
		if err != nil {
			return nil, err
		}
		smile.Strikes[i] = k
		smile.Vols[i] = vol
	}

	sort.Sort(byStrike{smile})
	return smile, nil
}

type byStrike struct{ s *VolatilitySmile }

func (b byStrike) Len() int           { return len(b.s.Strikes) }
func (b byStrike) Less(i, j int) bool { return b.s.Strikes[i] < b.s.Strikes[j] }
func (b byStrike) Swap(i, j int) {
	b.s.Strikes[i], b.s.Strikes[j] = b.s.Strikes[j], b.s.Strikes[i]
	b.s.Vols[i], b.s.Vols[j] = b.s.Vols[j], b.s.Vols[i]
}

// Interpolant 构建该微笑的钳制三次样条
func (s *VolatilitySmile) Interpolant() (*CubicSpline, error) {
	return NewClampedCubicSpline(s.Strikes, s.Vols)
}
