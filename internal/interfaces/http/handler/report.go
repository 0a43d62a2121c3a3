package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appreporting "github.com/taskilo/backend/internal/application/reporting"
	"github.com/taskilo/backend/internal/domain/reporting"
	"github.com/taskilo/backend/internal/infrastructure/logger"
	"github.com/taskilo/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ReportHandler handles feed ingestion and report queries
type ReportHandler struct {
	BaseHandler
	service       *appreporting.ReportService
	logger        *zap.Logger
	defaultWindow reporting.Window
}

// ReportHandlerOption configures a ReportHandler
type ReportHandlerOption func(*ReportHandler)

// WithDefaultWindow sets the window used when a report query names none.
func WithDefaultWindow(w reporting.Window) ReportHandlerOption {
	return func(h *ReportHandler) {
		if w.IsValid() {
			h.defaultWindow = w
		}
	}
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *appreporting.ReportService, logger *zap.Logger, opts ...ReportHandlerOption) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ReportHandler{
		service:       service,
		logger:        logger,
		defaultWindow: reporting.DefaultWindow,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// requestContext attaches the request-scoped logger and request ID to the
// request context so the service layer logs with the same correlation fields.
func (h *ReportHandler) requestContext(c *gin.Context) context.Context {
	ctx := logger.WithContext(c.Request.Context(), logger.GetGinLogger(c))
	return logger.WithRequestID(ctx, getRequestID(c))
}

// RegisterRoutes registers feed ingestion and report routes on the API group.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	feeds := rg.Group("/feeds")
	{
		feeds.PUT("/:feed", h.ReplaceFeed)
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/revenue-expenses", h.RevenueExpenses)
	}
}

// ReplaceFeed handles PUT /api/v1/feeds/:feed
// The body is a JSON array of raw records for the named feed; it replaces the
// previous snapshot wholesale.
func (h *ReportHandler) ReplaceFeed(c *gin.Context) {
	feed, err := appreporting.ParseFeed(c.Param("feed"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "cannot read request body")
		return
	}

	count, err := h.service.ReplaceFeed(h.requestContext(c), feed, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.FeedReplaceResponse{
		Feed:     string(feed),
		Records:  count,
		Revision: h.service.Revision(),
	})
}

// RevenueExpenses handles GET /api/v1/reports/revenue-expenses
func (h *ReportHandler) RevenueExpenses(c *gin.Context) {
	var query dto.RevenueExpensesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	window := h.defaultWindow
	if query.Window != "" {
		var err error
		window, err = reporting.ParseWindow(query.Window)
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}
	toggles, err := reporting.ParseCategoryToggles(query.Categories)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status, err := reporting.ParseInvoiceStatusFilter(query.InvoiceStatus)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.RevenueExpenses(h.requestContext(c), reporting.Settings{
		Window:        window,
		Toggles:       toggles,
		InvoiceStatus: status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRevenueExpensesResponse(window, result))
}

// Health handles GET /healthz
func (h *ReportHandler) Health(c *gin.Context) {
	feeds := make(map[string]int)
	for feed, size := range h.service.FeedSizes() {
		feeds[string(feed)] = size
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Revision: h.service.Revision(),
		Feeds:    feeds,
	})
}
