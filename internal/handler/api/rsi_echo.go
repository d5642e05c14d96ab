package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"RSIScan/internal/domain/models"
	xhttp "RSIScan/pkg/http"
	xlogger "RSIScan/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RSIScanner answers RSI scan requests.
type RSIScanner interface {
	Scan(ctx context.Context, req models.RSIRequest) []models.IndicatorResult
	CacheTTL() time.Duration
}

// RSIEchoHandler serves the RSI scan endpoint.
type RSIEchoHandler struct {
	logger *xlogger.Logger
	svc    RSIScanner
}

func NewRSIEchoHandler(logger *xlogger.Logger, svc RSIScanner) *RSIEchoHandler {
	return &RSIEchoHandler{logger: logger, svc: svc}
}

func (h *RSIEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/rsi", h.RSI)
}

// RSI handles GET /api/rsi. The body is a bare JSON array; only invalid
// parameters produce an error envelope.
func (h *RSIEchoHandler) RSI(c echo.Context) error {
	req := &models.RSIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if v, ok := c.QueryParams()["symbols"]; ok && len(v) > 0 {
		s := v[0]
		req.Symbols = &s
	}

	res := h.svc.Scan(c.Request().Context(), *req)

	c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(h.svc.CacheTTL().Seconds())))
	return c.JSON(http.StatusOK, res)
}

// Health handles GET /healthz.
func (h *RSIEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
