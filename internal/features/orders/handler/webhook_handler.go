package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	headerSignature  = "X-WC-Webhook-Signature"
	headerDeliveryID = "X-WC-Webhook-Delivery-ID"
	headerResource   = "X-WC-Webhook-Resource"
	headerTopic      = "X-WC-Webhook-Topic"
)

// WebhookResponse is returned to the storefront for every accepted delivery.
type WebhookResponse struct {
	Received    bool   `json:"received"`
	Action      string `json:"action"`
	OrderID     string `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}

// WebhookHandler receives WooCommerce order webhooks.
type WebhookHandler struct {
	syncer     ports.OrderSyncer
	decoder    ports.OrderDecoder
	deliveries ports.DeliveryStore
	secret     []byte
	tenantID   string
	logger     *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret disables signature checks.
func NewWebhookHandler(syncer ports.OrderSyncer, decoder ports.OrderDecoder, deliveries ports.DeliveryStore, secret, tenantID string) *WebhookHandler {
	return &WebhookHandler{
		syncer:     syncer,
		decoder:    decoder,
		deliveries: deliveries,
		secret:     []byte(secret),
		tenantID:   tenantID,
		logger:     logger.Named("webhook"),
	}
}

// Receive handles a WooCommerce webhook delivery.
// @Summary Receive WooCommerce webhook
// @Description Syncs the delivered order. Returns 5xx on sync failure so WooCommerce retries.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-WC-Webhook-Signature header string false "Base64 HMAC-SHA256 of the body"
// @Param X-WC-Webhook-Delivery-ID header string false "Delivery id used for deduplication"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /webhooks/woocommerce [post]
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	body := c.Body()
	ctx := c.UserContext()

	if isPing(body) {
		h.logger.Info("Ping received", zap.String("topic", c.Get(headerTopic)))
		return c.Status(http.StatusOK).JSON(WebhookResponse{Received: true, Action: "ping"})
	}

	if len(h.secret) > 0 && !h.validSignature(body, c.Get(headerSignature)) {
		h.logger.Warn("Signature verification failed", zap.String("ray_id", rayID(c)))
		return errorJSON(c, http.StatusUnauthorized, "Invalid signature")
	}

	var probe struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid JSON body")
	}

	if c.Get(headerResource) != "order" && probe.ID == 0 {
		h.logger.Info("Skipping non-order event", zap.String("topic", c.Get(headerTopic)))
		return c.Status(http.StatusOK).JSON(WebhookResponse{Received: true, Action: "skipped"})
	}

	deliveryID := c.Get(headerDeliveryID)
	if deliveryID != "" {
		done, err := h.deliveries.IsProcessed(ctx, deliveryID)
		if err != nil {
			h.logger.Warn("Failed to check delivery", zap.String("delivery_id", deliveryID), zap.Error(err))
		} else if done {
			return c.Status(http.StatusOK).JSON(WebhookResponse{Received: true, Action: "duplicate"})
		}
	}

	order, err := h.decoder.DecodeOrder(body)
	if err != nil {
		h.logger.Warn("Rejected webhook payload", zap.String("ray_id", rayID(c)), zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.syncer.Sync(ctx, order, h.tenantID)
	if err != nil {
		h.logger.Error("Failed to sync webhook order",
			zap.Int64("external_order_id", order.ID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidOrder) {
			status = http.StatusBadRequest
		}
		return errorJSON(c, status, "Failed to sync order")
	}

	if deliveryID != "" {
		if err := h.deliveries.MarkProcessed(ctx, deliveryID); err != nil {
			h.logger.Warn("Failed to mark delivery", zap.String("delivery_id", deliveryID), zap.Error(err))
		}
	}

	h.logger.Info("Webhook order synced",
		zap.String("order_number", result.OrderNumber),
		zap.String("action", string(result.Action)),
	)

	return c.Status(http.StatusOK).JSON(WebhookResponse{
		Received:    true,
		Action:      string(result.Action),
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
	})
}

// isPing detects the empty and form-encoded bodies WooCommerce sends when a webhook is saved.
func isPing(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("{}")) ||
		bytes.HasPrefix(trimmed, []byte("webhook_id="))
}

func (h *WebhookHandler) validSignature(body []byte, header string) bool {
	if header == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	return hmac.Equal(signature(h.secret, body), given)
}

// signature is the raw HMAC-SHA256 WooCommerce computes over the body.
func signature(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}
