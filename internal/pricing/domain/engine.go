package domain

import (
	"time"
)

// Valuation 估值环境：估值日与无风险利率由外部注入
type Valuation struct {
	Today        time.Time
	RiskFreeRate float64
}

// VolatilityQuote 某一行权价上的插值波动率
type VolatilityQuote struct {
	Symbol       string           `json:"symbol"`
	Tenor        string           `json:"tenor"`
	Strike       float64          `json:"strike"`
	Volatility   float64          `json:"volatility"`
	Expiry       time.Time        `json:"expiry"`
	TimeToExpiry float64          `json:"time_to_expiry"`
	FuturesPrice float64          `json:"futures_price"`
	Smile        *VolatilitySmile `json:"smile"`
}

// PriceEuropean 在给定快照上为欧式期货期权定价
// 校验顺序：空快照、期权类型、行权价、品种、到期日；到期日不晚于估值日时权利金为 0
func PriceEuropean(s *Snapshot, req PricingRequest, v Valuation) (*PricingResult, error) {
	if s.IsEmpty() {
		return nil, newError(KindNoMarketData, "no market data uploaded")
	}
	optionType, err := ParseOptionType(req.OptionType)
	if err != nil {
		return nil, err
	}
	if err := ValidateStrike(req.Strike); err != nil {
		return nil, err
	}
	row, err := s.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}
	expiry, err := ExpiryDate(req.Symbol, req.Tenor)
	if err != nil {
		return nil, err
	}

	res := &PricingResult{
		Symbol:       req.Symbol,
		Tenor:        req.Tenor,
		OptionType:   optionType,
		Strike:       req.Strike,
		Expiry:       expiry,
		RiskFreeRate: v.RiskFreeRate,
	}
	if DaysBetween(v.Today, expiry) <= 0 {
		res.Expired = true
		return res, nil
	}

	quote, err := interpolate(row, req.Tenor, req.Strike, expiry, v.Today)
	if err != nil {
		return nil, err
	}

	premium, err := Black76Price(optionType, Black76Input{
		F: quote.FuturesPrice,
		K: req.Strike,
		T: quote.TimeToExpiry,
		R: v.RiskFreeRate,
		V: quote.Volatility,
	})
	if err != nil {
		return nil, err
	}

	res.Premium = premium
	res.TimeToExpiry = quote.TimeToExpiry
	res.FuturesPrice = quote.FuturesPrice
	res.Volatility = quote.Volatility
	return res, nil
}

// InterpolateVolatility 返回某合约月份微笑在 strike 处的插值波动率
func InterpolateVolatility(s *Snapshot, symbol, tenor string, strike float64, today time.Time) (*VolatilityQuote, error) {
	if s.IsEmpty() {
		return nil, newError(KindNoMarketData, "no market data uploaded")
	}
	if err := ValidateStrike(strike); err != nil {
		return nil, err
	}
	row, err := s.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	expiry, err := ExpiryDate(symbol, tenor)
	if err != nil {
		return nil, err
	}
	if DaysBetween(today, expiry) <= 0 {
		return nil, newError(KindNumericDomainError, "%s %s expired on %s", symbol, tenor, expiry.Format(time.DateOnly))
	}
	return interpolate(row, tenor, strike, expiry, today)
}

func interpolate(row *MarketDataRow, tenor string, strike float64, expiry, today time.Time) (*VolatilityQuote, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}
	idx, err := row.TenorIndex(tenor)
	if err != nil {
		return nil, err
	}

	t := YearFraction(today, expiry)
	forward := row.FuturesPrice[idx]
	smile, err := BuildSmile(row.SmileCallDeltas, row.VolatilitySurface[idx], t, forward)
	if err != nil {
		return nil, err
	}
	spline, err := smile.Interpolant()
	if err != nil {
		return nil, err
	}

	return &VolatilityQuote{
		Symbol:       row.Symbol,
		Tenor:        tenor,
		Strike:       strike,
		Volatility:   spline.At(strike),
		Expiry:       expiry,
		TimeToExpiry: t,
		FuturesPrice: forward,
		Smile:        smile,
	}, nil
}
