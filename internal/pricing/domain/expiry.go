package domain

import (
	"time"
)

// tenorLayout 合约月份代码格式，如 "Jan24"
const tenorLayout = "Jan06"

// expiryMonthOffsets 各品种到期日相对合约月份回退的营业月末数
var expiryMonthOffsets = map[string]int{
	"BRN": 2, // Brent：合约月前第二个营业月末
	"HH":  1, // Henry Hub：合约月前一个营业月末
}

// ParseTenor 解析合约月份代码，返回该月 1 日 (UTC)
func ParseTenor(tenor string) (time.Time, error) {
	t, err := time.Parse(tenorLayout, tenor)
	if err != nil {
		return time.Time{}, wrapError(KindInvalidTenor, err, "invalid tenor %q", tenor)
	}
	return t, nil
}

// SupportedSymbols 返回支持到期日推算的品种
func SupportedSymbols() []string {
	return []string{"BRN", "HH"}
}

// ExpiryDate 根据品种和合约月份代码推算期权到期日
// 从合约月 1 日起向前回退 n 个营业月末，即合约月前第 n 个月的最后一个营业日
func ExpiryDate(symbol, tenor string) (time.Time, error) {
	month, err := ParseTenor(tenor)
	if err != nil {
		return time.Time{}, err
	}

	offset, ok := expiryMonthOffsets[symbol]
	if !ok {
		return time.Time{}, newError(KindUnsupportedSymbol, "unsupported symbol for expiry: %s", symbol)
	}

	return LastBusinessDay(month.AddDate(0, -offset, 0)), nil
}

// LastBusinessDay 返回 t 所在月份的最后一个营业日（仅排除周末）
func LastBusinessDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// IsBusinessDay 周一至周五为营业日，不考虑节假日
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
