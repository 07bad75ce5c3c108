package domain

import (
	"math"
	"sort"
)

// CubicSpline 分段三次样条插值器
// 第 i 段在 [xs[i], xs[i+1]] 上为 a + b·t + c·t² + d·t³，t = x − xs[i]
// 区间外沿首段/末段多项式外推
type CubicSpline struct {
	xs         []float64
	a, b, c, d []float64
}

// NewClampedCubicSpline 构建两端一阶导数为零的三次样条
// xs 必须严格递增且至少两个点
func NewClampedCubicSpline(xs, ys []float64) (*CubicSpline, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, newError(KindInvalidSmile, "spline has %d x values and %d y values", n, len(ys))
	}
	if n < 2 {
		return nil, newError(KindInvalidSmile, "spline needs at least 2 points, got %d", n)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return nil, newError(KindInvalidSmile, "spline point %d is not finite", i)
		}
		if i > 0 && xs[i] <= xs[i-1] {
			return nil, newError(KindInvalidSmile, "spline x values must be strictly increasing (x[%d]=%g, x[%d]=%g)", i-1, xs[i-1], i, xs[i])
		}
	}

	h := make([]float64, n-1)
	slope := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
		slope[i] = (ys[i+1] - ys[i]) / h[i]
	}

	// 二阶导数 M 的三对角方程组，端点条件 S'(x0) = S'(xn) = 0
	lower := make([]float64, n)
	diag := make([]float64, n)
	upper := make([]float64, n)
	rhs := make([]float64, n)

	diag[0] = 2 * h[0]
	upper[0] = h[0]
	rhs[0] = 6 * slope[0]
	for i := 1; i < n-1; i++ {
		lower[i] = h[i-1]
		diag[i] = 2 * (h[i-1] + h[i])
		upper[i] = h[i]
		rhs[i] = 6 * (slope[i] - slope[i-1])
	}
	lower[n-1] = h[n-2]
	diag[n-1] = 2 * h[n-2]
	rhs[n-1] = -6 * slope[n-2]

	m := solveTridiagonal(lower, diag, upper, rhs)

	s := &CubicSpline{
		xs: append([]float64(nil), xs...),
		a:  make([]float64, n-1),
		b:  make([]float64, n-1),
		c:  make([]float64, n-1),
		d:  make([]float64, n-1),
	}
	for i := 0; i < n-1; i++ {
		s.a[i] = ys[i]
		s.b[i] = slope[i] - h[i]*(2*m[i]+m[i+1])/6
		s.c[i] = m[i] / 2
		s.d[i] = (m[i+1] - m[i]) / (6 * h[i])
	}
	return s, nil
}

// solveTridiagonal Thomas 算法，方程组对角占优无需选主元
func solveTridiagonal(lower, diag, upper, rhs []float64) []float64 {
	n := len(diag)
	cp := make([]float64, n)
	dp := make([]float64, n)

	cp[0] = upper[0] / diag[0]
	dp[0] = rhs[0] / diag[0]
	for i := 1; i < n; i++ {
		denom := diag[i] - lower[i]*cp[i-1]
		cp[i] = upper[i] / denom
		dp[i] = (rhs[i] - lower[i]*dp[i-1]) / denom
	}

	x := make([]float64, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x
}

// At 计算 x 处的插值
func (s *CubicSpline) At(x float64) float64 {
	i := s.segment(x)
	t := x - s.xs[i]
	return s.a[i] + t*(s.b[i]+t*(s.c[i]+t*s.d[i]))
}

// Derivative 计算 x 处的一阶导数
func (s *CubicSpline) Derivative(x float64) float64 {
	i := s.segment(x)
	t := x - s.xs[i]
	return s.b[i] + t*(2*s.c[i]+3*t*s.d[i])
}

// Knots 返回节点横坐标
func (s *CubicSpline) Knots() []float64 {
	return append([]float64(nil), s.xs...)
}

func (s *CubicSpline) segment(x float64) int {
	last := len(s.xs) - 2
	// 第一个 xs[j] > x 的位置
	j := sort.Search(len(s.xs), func(j int) bool { return s.xs[j] > x })
	i := j - 1
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
