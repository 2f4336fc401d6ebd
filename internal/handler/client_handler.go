package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sales-service/internal/middleware"
	"sales-service/internal/model"
	"sales-service/internal/store"
	"sales-service/pkg/logger"
	"sales-service/prometheus"
)

// ClientRequest defines the structure for client creation/update requests
type ClientRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// ClientHandler serves the tenant's customer records.
type ClientHandler struct {
	store store.Store
}

func NewClientHandler(st store.Store) *ClientHandler {
	return &ClientHandler{store: st}
}

// List retrieves all clients for the tenant
func (h *ClientHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	clients, err := h.store.ListClients(c.Request().Context(), tenantID)
	if err != nil {
		log.Error("Failed to retrieve clients", zap.Error(err), zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve clients"})
	}

	log.Info("Clients retrieved successfully",
		zap.Int("count", len(clients)),
		zap.Uint("tenant_id", tenantID))
	return c.JSON(http.StatusOK, clients)
}

// Create adds a new client
func (h *ClientHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	client := model.Client{
		Name:        req.Name,
		Phone:       req.Phone,
		Description: req.Description,
		TenantID:    tenantID,
	}

	if err := h.store.CreateClient(c.Request().Context(), &client); err != nil {
		log.Error("Failed to create client",
			zap.String("name", req.Name),
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create client"})
	}

	prometheus.RecordClientOperation("create")
	log.Info("Client created successfully",
		zap.Uint("client_id", client.ID),
		zap.String("name", client.Name),
		zap.Uint("tenant_id", client.TenantID))
	return c.JSON(http.StatusCreated, client)
}

// Update updates an existing client
func (h *ClientHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("client_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	client := model.Client{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Description: req.Description,
		TenantID:    tenantID,
	}

	if err := h.store.UpdateClient(c.Request().Context(), tenantID, &client); err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			log.Warn("Client not found or does not belong to tenant",
				zap.Uint("client_id", id),
				zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		log.Error("Failed to update client", zap.Uint("client_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update client"})
	}

	prometheus.RecordClientOperation("update")
	log.Info("Client updated successfully",
		zap.Uint("client_id", client.ID),
		zap.String("name", client.Name),
		zap.Uint("tenant_id", client.TenantID))
	return c.JSON(http.StatusOK, client)
}

// Delete handles deleting a client (soft delete)
func (h *ClientHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing tenant context"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}

	if err := h.store.DeleteClient(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			log.Warn("Client not found or does not belong to tenant",
				zap.Uint("client_id", id),
				zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Client not found"})
		}
		log.Error("Failed to delete client", zap.Uint("client_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete client"})
	}

	prometheus.RecordClientOperation("delete")
	log.Info("Client deleted successfully",
		zap.Uint("client_id", id),
		zap.Uint("tenant_id", tenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Client deleted successfully"})
}
