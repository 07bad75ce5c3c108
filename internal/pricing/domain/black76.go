package domain

import (
	"math"
)

// Black76Input Black-76 模型输入
type Black76Input struct {
	F float64 // 期货价格
	K float64 // 执行价格
	T float64 // 到期时间 (年)
	R float64 // 无风险利率
	V float64 // 波动率
}

func (in Black76Input) validate() error {
	switch {
	case !(in.V > 0) || math.IsInf(in.V, 0):
		return newError(KindNumericDomainError, "volatility must be positive and finite, got %g", in.V)
	case !(in.T > 0) || math.IsInf(in.T, 0):
		return newError(KindNumericDomainError, "time to expiry must be positive and finite, got %g", in.T)
	case !(in.F > 0) || math.IsInf(in.F, 0):
		return newError(KindNumericDomainError, "futures price must be positive and finite, got %g", in.F)
	case !(in.K > 0) || math.IsInf(in.K, 0):
		return newError(KindNumericDomainError, "strike must be positive and finite, got %g", in.K)
	case math.IsNaN(in.R) || math.IsInf(in.R, 0):
		return newError(KindNumericDomainError, "rate must be finite, got %g", in.R)
	}
	return nil
}

// Black76Price 计算期货期权的 Black-76 价格
//
//	d1 = (ln(F/K) + σ²T/2) / (σ√T)，d2 = d1 − σ√T
//	call = e^(−rT)·(F·N(d1) − K·N(d2))
//	put  = e^(−rT)·(K·N(−d2) − F·N(−d1))
func Black76Price(optionType OptionType, in Black76Input) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	sqrtT := math.Sqrt(in.T)
	d1 := (math.Log(in.F/in.K) + in.V*in.V*in.T/2) / (in.V * sqrtT)
	d2 := d1 - in.V*sqrtT
	df := math.Exp(-in.R * in.T)

	var price float64
	switch optionType {
	case OptionTypeCall:
		price = df * (in.F*normCdf(d1) - in.K*normCdf(d2))
	case OptionTypePut:
		price = df * (in.K*normCdf(-d2) - in.F*normCdf(-d1))
	default:
		return 0, newError(KindInvalidOptionType, "option must be either put or call, got %q", optionType)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, newError(KindNumericDomainError, "premium is not finite")
	}
	return price, nil
}

// Black76Vega 对波动率的一阶敏感度
func Black76Vega(in Black76Input) float64 {
	if in.validate() != nil {
		return 0
	}
	sqrtT := math.Sqrt(in.T)
	d1 := (math.Log(in.F/in.K) + in.V*in.V*in.T/2) / (in.V * sqrtT)
	return math.Exp(-in.R*in.T) * in.F * normPdf(d1) * sqrtT
}

// Black76ImpliedVol 由价格反解隐含波动率（二分法）
func Black76ImpliedVol(optionType OptionType, price float64, in Black76Input) (float64, error) {
	const (
		maxIter = 200
		tol     = 1e-12
	)

	lo, hi := 1e-6, 5.0
	in.V = lo
	pLo, err := Black76Price(optionType, in)
	if err != nil {
		return 0, err
	}
	in.V = hi
	pHi, err := Black76Price(optionType, in)
	if err != nil {
		return 0, err
	}
	if price < pLo || price > pHi {
		return 0, newError(KindNumericDomainError, "price %g outside the attainable range [%g, %g]", price, pLo, pHi)
	}

	for i := 0; i < maxIter && hi-lo > tol; i++ {
		in.V = (lo + hi) / 2
		p, err := Black76Price(optionType, in)
		if err != nil {
			return 0, err
		}
		if p < price {
			lo = in.V
		} else {
			hi = in.V
		}
	}
	return (lo + hi) / 2, nil
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
