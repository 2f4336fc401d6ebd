package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales-service/internal/middleware"
	"sales-service/internal/model"
	"sales-service/internal/store"
	"sales-service/pkg/logger"
	"sales-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
}

func (r *ProductRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.Category == "" {
		r.Category = model.CategoryOther
	}
	if !model.ValidCategory(r.Category) {
		return "unknown category"
	}
	if r.CostPrice.IsNegative() || r.SellingPrice.IsNegative() {
		return "prices must not be negative"
	}
	if r.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

// ProductHandler serves the tenant-scoped product catalog.
type ProductHandler struct {
	store store.Store
}

func NewProductHandler(st store.Store) *ProductHandler {
	return &ProductHandler{store: st}
}

// List handles retrieving all products for the tenant
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	defer prometheus.TrackDBOperation("list_products")(time.Now())
	products, err := h.store.ListProducts(c.Request().Context(), tenantID)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// Get handles retrieving a single product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	product, err := h.store.GetProduct(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			log.Warn("Product not found", zap.Uint("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to get product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve product"})
	}

	log.Info("Product retrieved successfully",
		zap.Uint("product_id", product.ID),
		zap.String("product_name", product.Name),
		zap.String("product_sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// Create handles creating a new product
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Invalid product request", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	product := model.Product{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		SKU:          req.SKU,
		CostPrice:    req.CostPrice.Round(2),
		SellingPrice: req.SellingPrice.Round(2),
		Stock:        req.Stock,
		TenantID:     tenantID,
	}

	if err := h.store.CreateProduct(c.Request().Context(), &product); err != nil {
		if errors.Is(err, store.ErrDuplicateSKU) {
			log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Product with this SKU already exists"})
		}
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.String("sku", req.SKU),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	prometheus.RecordProductOperation("create")
	prometheus.UpdateProductInventory(strconv.FormatUint(uint64(product.ID), 10), product.Name, product.Category, float64(product.Stock))
	log.Info("Product created successfully",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// Update handles updating an existing product
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Invalid product request", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	product := model.Product{
		ID:           id,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		SKU:          req.SKU,
		CostPrice:    req.CostPrice.Round(2),
		SellingPrice: req.SellingPrice.Round(2),
		Stock:        req.Stock,
		TenantID:     tenantID,
	}

	if err := h.store.UpdateProduct(c.Request().Context(), tenantID, &product); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			log.Warn("Product not found for update", zap.Uint("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	prometheus.RecordProductOperation("update")
	prometheus.UpdateProductInventory(strconv.FormatUint(uint64(product.ID), 10), product.Name, product.Category, float64(product.Stock))
	log.Info("Product updated successfully",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// Delete handles deleting a product (soft delete)
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	if err := h.store.DeleteProduct(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			log.Warn("Product not found for deletion", zap.Uint("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted successfully", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
