package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smilepricing/internal/pricing/application"
	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// uploadField 上传表单中的文件字段名
const uploadField = "data"

// PricingHandler HTTP 处理器
// 负责行情上传/查询与期权定价请求
type PricingHandler struct {
	svc            *application.PricingService
	maxUploadBytes int64
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(svc *application.PricingService, maxUploadBytes int64) *PricingHandler {
	return &PricingHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes 注册路由
func (h *PricingHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)

	md := router.Group("/marketdata")
	{
		md.GET("/get", h.GetMarketData)
		md.POST("/put", h.PutMarketData)
	}

	router.GET("/optionpricing/european/:symbol/:tenor/:putcall/:strike", h.PriceEuropean)
	router.GET("/volatility/:symbol/:tenor/:strike", h.GetVolatility)
}

// Health 健康检查
func (h *PricingHandler) Health(c *gin.Context) {
	s := h.svc.GetSnapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"snapshot_version": s.Version,
		"snapshot_rows":    len(s.Rows),
	})
}

// GetMarketData 返回当前行情快照，未上传时返回空对象
func (h *PricingHandler) GetMarketData(c *gin.Context) {
	s := h.svc.GetSnapshot(c.Request.Context())
	if len(s.Rows) == 0 {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.Rows)
}

// PutMarketData 整体替换行情快照
// 支持 multipart 文件字段 data，或直接以 JSON 作为请求体
func (h *PricingHandler) PutMarketData(c *gin.Context) {
	ctx := c.Request.Context()
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	payload, source, err := h.readPayload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		logger.Warn(ctx, "failed to read market data upload", "error", err)
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.PutSnapshot(ctx, application.PutMarketDataCommand{Payload: payload, Source: source}); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func (h *PricingHandler) readPayload(c *gin.Context) ([]byte, string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		body, err := io.ReadAll(c.Request.Body)
		return body, "body", err
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", err
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", fmt.Errorf("multipart form has no %q file", uploadField)
		}
		return nil, "", fmt.Errorf("invalid multipart upload: %w", err)
	}
	return readFormFile(fh)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read uploaded file: %w", err)
	}
	return data, fh.Filename, nil
}

// PriceEuropean 欧式期货期权定价
func (h *PricingHandler) PriceEuropean(c *gin.Context) {
	strike, err := parseStrike(c.Param("strike"))
	if err != nil {
		handleError(c, err)
		return
	}

	res, err := h.svc.PriceEuropean(c.Request.Context(), application.PriceOptionQuery{
		Symbol:     c.Param("symbol"),
		Tenor:      c.Param("tenor"),
		OptionType: c.Param("putcall"),
		Strike:     strike,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	if c.Query("verbose") == "true" {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"premium": res.Premium})
}

// GetVolatility 返回插值波动率与微笑节点
func (h *PricingHandler) GetVolatility(c *gin.Context) {
	strike, err := parseStrike(c.Param("strike"))
	if err != nil {
		handleError(c, err)
		return
	}

	q, err := h.svc.InterpolateVolatility(c.Request.Context(), application.VolatilityQuery{
		Symbol: c.Param("symbol"),
		Tenor:  c.Param("tenor"),
		Strike: strike,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"volatility":     q.Volatility,
		"strikes":        q.Smile.Strikes,
		"vols":           q.Smile.Vols,
		"expiry":         q.Expiry.Format("2006-01-02"),
		"time_to_expiry": q.TimeToExpiry,
		"futures_price":  q.FuturesPrice,
	})
}

// parseStrike 以十进制解析路径中的行权价，拒绝 NaN/Inf 等写法
func parseStrike(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: strike %q is not a decimal number", domain.ErrInvalidStrike, raw)
	}
	strike := d.InexactFloat64()
	if err := domain.ValidateStrike(strike); err != nil {
		return 0, err
	}
	return strike, nil
}

// statusOf 领域错误分类到 HTTP 状态码
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNoMarketData, domain.KindSymbolNotFound, domain.KindTenorNotFound:
		return http.StatusNotFound
	case domain.KindInvalidTenor, domain.KindUnsupportedSymbol, domain.KindInvalidOptionType,
		domain.KindInvalidStrike, domain.KindMalformedPayload, domain.KindUnknownField, domain.KindInconsistentRow:
		return http.StatusBadRequest
	case domain.KindInvalidSmile, domain.KindNumericDomainError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	errorResponse(c, status, err.Error())
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
