package domain

import (
	"math"
	"strings"
	"time"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// ParseOptionType 解析期权类型，不区分大小写
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(s) {
	case "call":
		return OptionTypeCall, nil
	case "put":
		return OptionTypePut, nil
	}
	return "", newError(KindInvalidOptionType, "option must be either put or call, got %q", s)
}

// PricingRequest 欧式期权定价请求
type PricingRequest struct {
	Symbol     string
	Tenor      string
	OptionType string
	Strike     float64
}

// ValidateStrike 行权价必须为正的有限数
func ValidateStrike(strike float64) error {
	if !(strike > 0) || math.IsInf(strike, 0) {
		return newError(KindInvalidStrike, "strike must be a positive number, got %g", strike)
	}
	return nil
}

// PricingResult 定价结果
// 已到期合约 Premium 为 0，仅填充 Expiry，其余诊断字段为零值
type PricingResult struct {
	Symbol       string     `json:"symbol"`
	Tenor        string     `json:"tenor"`
	OptionType   OptionType `json:"option_type"`
	Strike       float64    `json:"strike"`
	Premium      float64    `json:"premium"`
	Expiry       time.Time  `json:"expiry"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	FuturesPrice float64    `json:"futures_price"`
	Volatility   float64    `json:"volatility"`
	RiskFreeRate float64    `json:"risk_free_rate"`
	Expired      bool       `json:"expired"`
}

// YearFraction 按 Actual/365 计算两个日期之间的年化时间
func YearFraction(from, to time.Time) float64 {
	return float64(DaysBetween(from, to)) / 365
}

// DaysBetween 两个日期之间的自然日数（按日历日期计）
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
