package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sales-service/internal/middleware"
	"sales-service/internal/sales"
	"sales-service/internal/store"
	"sales-service/pkg/logger"
	"sales-service/prometheus"
)

// topProductsLimit bounds the ranking returned by TopProducts.
const topProductsLimit = 5

// ReportHandler serves the financial reporting endpoints. All figures are
// aggregated from persisted sales; nothing here mutates state.
type ReportHandler struct {
	store store.Store
}

func NewReportHandler(st store.Store) *ReportHandler {
	return &ReportHandler{store: st}
}

// Metrics returns the tenant's financial metrics for the requested period
// (month, quarter or year; defaults to month).
func (h *ReportHandler) Metrics(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = sales.PeriodMonth
	}
	since, err := sales.PeriodStart(period, time.Now())
	if err != nil {
		log.Warn("Invalid reporting period", zap.String("period", period))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("report_metrics")(time.Now())
	salesList, err := h.store.ListSales(c.Request().Context(), tenantID, since)
	if err != nil {
		log.Error("Failed to load sales for metrics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute metrics"})
	}

	metrics := sales.ComputeMetrics(salesList)
	log.Info("Financial metrics computed",
		zap.String("period", period),
		zap.Int("sales", metrics.TotalSales),
		zap.String("revenue", metrics.TotalRevenue.String()))
	return c.JSON(http.StatusOK, metrics)
}

// Monthly returns the twelve-month sales trend for the current year.
func (h *ReportHandler) Monthly(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	now := time.Now()
	yearStart, _ := sales.PeriodStart(sales.PeriodYear, now)

	salesList, err := h.store.ListSales(c.Request().Context(), tenantID, yearStart)
	if err != nil {
		log.Error("Failed to load sales for monthly series", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute monthly series"})
	}

	return c.JSON(http.StatusOK, sales.MonthlySeries(salesList, now.Year()))
}

// TopProducts returns the best sellers by volume across all of the tenant's
// sales.
func (h *ReportHandler) TopProducts(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	salesList, err := h.store.ListSales(c.Request().Context(), tenantID, time.Time{})
	if err != nil {
		log.Error("Failed to load sales for top products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute top products"})
	}

	return c.JSON(http.StatusOK, sales.TopProducts(salesList, topProductsLimit))
}
