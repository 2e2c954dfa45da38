package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SyncHandler exposes operator endpoints to trigger and inspect syncs.
type SyncHandler struct {
	runner        ports.SyncRunner
	defaultTenant string
}

// NewSyncHandler creates a new SyncHandler. Requests without ?tenant= use defaultTenant.
func NewSyncHandler(runner ports.SyncRunner, defaultTenant string) *SyncHandler {
	return &SyncHandler{
		runner:        runner,
		defaultTenant: defaultTenant,
	}
}

func (h *SyncHandler) tenant(c *fiber.Ctx) string {
	return c.Query("tenant", h.defaultTenant)
}

// Poll runs a batch sync.
// @Summary Run a batch poll
// @Description Syncs orders modified after since, or after the stored watermark.
// @Tags sync
// @Produce json
// @Param tenant query string false "Tenant ID"
// @Param since query string false "RFC3339 window start"
// @Success 200 {object} domain.PollSummary
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sync/poll [post]
func (h *SyncHandler) Poll(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "since must be RFC3339")
		}
		since = &t
	}

	summary, err := h.runner.Poll(c.UserContext(), h.tenant(c), since)
	if err != nil {
		logger.Get().Error("Poll failed",
			zap.String("tenant_id", h.tenant(c)),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(summary)
}

// SyncOrder fetches and syncs one storefront order.
// @Summary Sync a single order
// @Tags sync
// @Produce json
// @Param id path int true "WooCommerce order ID"
// @Param tenant query string false "Tenant ID"
// @Success 200 {object} domain.SyncResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sync/orders/{id} [post]
func (h *SyncHandler) SyncOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return errorJSON(c, http.StatusBadRequest, "Order ID must be a positive integer")
	}

	result, err := h.runner.SyncOne(c.UserContext(), h.tenant(c), id)
	if err != nil {
		logger.Get().Error("Failed to sync order",
			zap.Int64("external_order_id", id),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		msg := err.Error()
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			status = http.StatusNotFound
			msg = "Order not found"
		case errors.Is(err, domain.ErrInvalidOrder):
			status = http.StatusUnprocessableEntity
		}
		return errorJSON(c, status, msg)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// Status returns the poll bookkeeping of a tenant.
// @Summary Get sync status
// @Tags sync
// @Produce json
// @Param tenant query string false "Tenant ID"
// @Success 200 {object} ports.SyncStatus
// @Failure 500 {object} ErrorResponse
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	status, err := h.runner.Status(c.UserContext(), h.tenant(c))
	if err != nil {
		logger.Get().Error("Failed to read sync status", zap.String("ray_id", rayID(c)), zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to read sync status")
	}
	return c.Status(http.StatusOK).JSON(status)
}
