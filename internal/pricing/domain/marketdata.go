package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// 行情数据允许的字段
const (
	FieldFuturesPrice      = "FuturesPrice"
	FieldSymbol            = "Symbol"
	FieldSmileCallDeltas   = "SmileCallDeltas"
	FieldTenors            = "Tenors"
	FieldVolatilitySurface = "VolatilitySurface"
)

var allowedFields = map[string]struct{}{
	FieldFuturesPrice:      {},
	FieldSymbol:            {},
	FieldSmileCallDeltas:   {},
	FieldTenors:            {},
	FieldVolatilitySurface: {},
}

// MarketDataRow 单一品种的波动率微笑行情
// VolatilitySurface 按合约月份、再按 delta 排列，单位为百分点
type MarketDataRow struct {
	Symbol            string      `json:"Symbol,omitempty"`
	FuturesPrice      []float64   `json:"FuturesPrice,omitempty"`
	Tenors            []string    `json:"Tenors,omitempty"`
	SmileCallDeltas   []float64   `json:"SmileCallDeltas,omitempty"`
	VolatilitySurface [][]float64 `json:"VolatilitySurface,omitempty"`
}

// TenorIndex 返回合约月份在 Tenors 中的位置
func (r *MarketDataRow) TenorIndex(tenor string) (int, error) {
	for i, t := range r.Tenors {
		if t == tenor {
			return i, nil
		}
	}
	return -1, newError(KindTenorNotFound, "no tenor %s for %s", tenor, r.Symbol)
}

// Validate 校验数组长度一致性
func (r *MarketDataRow) Validate() error {
	n := len(r.Tenors)
	if len(r.FuturesPrice) != n || len(r.VolatilitySurface) != n {
		return newError(KindInconsistentRow,
			"row %q: Tenors(%d), FuturesPrice(%d) and VolatilitySurface(%d) must have equal length",
			r.Symbol, n, len(r.FuturesPrice), len(r.VolatilitySurface))
	}
	for i, smile := range r.VolatilitySurface {
		if len(smile) != len(r.SmileCallDeltas) {
			return newError(KindInconsistentRow,
				"row %q: VolatilitySurface[%d] has %d points, SmileCallDeltas has %d",
				r.Symbol, i, len(smile), len(r.SmileCallDeltas))
		}
	}
	return nil
}

// Snapshot 当前全量行情快照，创建后不可变
type Snapshot struct {
	Rows       []MarketDataRow
	Version    uint64
	UploadedAt time.Time
}

// NewSnapshot 创建快照
func NewSnapshot(rows []MarketDataRow) *Snapshot {
	return &Snapshot{Rows: rows}
}

// IsEmpty 快照是否为空
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Rows) == 0
}

// Lookup 取第一个匹配品种的行
func (s *Snapshot) Lookup(symbol string) (*MarketDataRow, error) {
	if s != nil {
		for i := range s.Rows {
			if s.Rows[i].Symbol == symbol {
				return &s.Rows[i], nil
			}
		}
	}
	return nil, newError(KindSymbolNotFound, "no market data for %s", symbol)
}

// Symbols 快照中出现的品种
func (s *Snapshot) Symbols() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		out = append(out, r.Symbol)
	}
	return out
}

// ParseSnapshot 解析上传的行情 JSON：必须是对象数组，字段限定在允许集合内
// 不校验必填字段，缺失字段在定价时才会暴露
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, newError(KindMalformedPayload, "market data should be a list of objects")
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, wrapError(KindMalformedPayload, err, "market data should be a list of objects")
	}

	rows := make([]MarketDataRow, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, newError(KindMalformedPayload, "record %d is not an object", i)
		}
		if unknown := unknownFields(rec); len(unknown) > 0 {
			return nil, newError(KindUnknownField,
				"record %d has unknown fields [%s]; allowed fields are %s",
				i, strings.Join(unknown, ", "), allowedFieldList())
		}

		var row MarketDataRow
		if err := decodeField(rec, FieldSymbol, &row.Symbol); err != nil {
			return nil, wrapError(KindMalformedPayload, err, "record %d", i)
		}
		if err := decodeField(rec, FieldFuturesPrice, &row.FuturesPrice); err != nil {
			return nil, wrapError(KindMalformedPayload, err, "record %d", i)
		}
		if err := decodeField(rec, FieldTenors, &row.Tenors); err != nil {
			return nil, wrapError(KindMalformedPayload, err, "record %d", i)
		}
		if err := decodeField(rec, FieldSmileCallDeltas, &row.SmileCallDeltas); err != nil {
			return nil, wrapError(KindMalformedPayload, err, "record %d", i)
		}
		if err := decodeField(rec, FieldVolatilitySurface, &row.VolatilitySurface); err != nil {
			return nil, wrapError(KindMalformedPayload, err, "record %d", i)
		}
		if err := row.Validate(); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return NewSnapshot(rows), nil
}

func decodeField(rec map[string]json.RawMessage, name string, dst any) error {
	raw, ok := rec[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &fieldError{name: name, err: err}
	}
	return nil
}

type fieldError struct {
	name string
	err  error
}

func (e *fieldError) Error() string { return "field " + e.name + ": " + e.err.Error() }

func (e *fieldError) Unwrap() error { return e.err }

func unknownFields(rec map[string]json.RawMessage) []string {
	var out []string
	for k := range rec {
		if _, ok := allowedFields[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func allowedFieldList() string {
	names := make([]string, 0, len(allowedFields))
	for k := range allowedFields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}
