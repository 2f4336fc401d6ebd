package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sales-service/internal/middleware"
	"sales-service/internal/model"
	"sales-service/internal/sales"
	"sales-service/internal/store"
	"sales-service/pkg/logger"
	"sales-service/prometheus"
)

// SaleHandler serves sale recording and retrieval.
type SaleHandler struct {
	store    store.Store
	recorder *sales.Recorder
}

func NewSaleHandler(st store.Store, recorder *sales.Recorder) *SaleHandler {
	return &SaleHandler{store: st, recorder: recorder}
}

// Create records a new sale: stock decrements, profit computation and the
// sale insert happen atomically in the recorder.
func (h *SaleHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	var req sales.SaleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("record_sale")(time.Now())
	sale, err := h.recorder.Record(c.Request().Context(), tenantID, &req)
	if err != nil {
		switch {
		case isValidationError(err):
			prometheus.RecordSaleOperation("record", "invalid")
			log.Warn("Sale request rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, store.ErrProductNotFound):
			prometheus.RecordSaleOperation("record", "not_found")
			log.Warn("Sale references unknown product", zap.Error(err))
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case errors.Is(err, store.ErrInsufficientStock):
			prometheus.RecordSaleOperation("record", "out_of_stock")
			log.Warn("Sale exceeds available stock", zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		prometheus.RecordSaleOperation("record", "error")
		log.Error("Failed to record sale", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record sale"})
	}

	prometheus.RecordSaleOperation("record", "success")
	prometheus.ObserveSaleValue(sale.Total.InexactFloat64())
	h.refreshInventoryGauge(c, tenantID, sale.Items)

	log.Info("Sale recorded successfully",
		zap.Uint("sale_id", sale.ID),
		zap.String("customer", sale.CustomerName),
		zap.String("total", sale.Total.String()),
		zap.String("profit", sale.Profit.String()),
		zap.Int("items", len(sale.Items)))
	return c.JSON(http.StatusCreated, sale)
}

// List handles retrieving the tenant's sales, newest first
func (h *SaleHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	defer prometheus.TrackDBOperation("list_sales")(time.Now())
	salesList, err := h.store.ListSales(c.Request().Context(), tenantID, time.Time{})
	if err != nil {
		log.Error("Failed to list sales", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sales"})
	}

	log.Info("Sales retrieved successfully", zap.Int("count", len(salesList)))
	return c.JSON(http.StatusOK, salesList)
}

// Get handles retrieving a single sale by ID
func (h *SaleHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}

	sale, err := h.store.GetSale(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			log.Warn("Sale not found", zap.Uint("sale_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Sale not found"})
		}
		log.Error("Failed to get sale", zap.Uint("sale_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sale"})
	}

	return c.JSON(http.StatusOK, sale)
}

// refreshInventoryGauge re-reads the touched products so the inventory gauge
// reflects post-sale stock. Failures here only cost a metric update.
func (h *SaleHandler) refreshInventoryGauge(c echo.Context, tenantID uint, items []model.SaleItem) {
	for _, item := range items {
		product, err := h.store.GetProduct(c.Request().Context(), tenantID, item.ProductID)
		if err != nil {
			continue
		}
		prometheus.UpdateProductInventory(
			strconv.FormatUint(uint64(product.ID), 10),
			product.Name,
			product.Category,
			float64(product.Stock),
		)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, sales.ErrMissingCustomer) ||
		errors.Is(err, sales.ErrInvalidPayment) ||
		errors.Is(err, sales.ErrEmptyItems) ||
		errors.Is(err, sales.ErrInvalidQuantity) ||
		errors.Is(err, sales.ErrInvalidPrice) ||
		errors.Is(err, sales.ErrNegativeCost)
}
