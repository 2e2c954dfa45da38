package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-sync/internal/core/cache"
	"storefront-sync/internal/features/orders/domain"
)

const (
	watermarkKeyPrefix = "watermark:"
	reportKeyPrefix    = "poll_report:"
	deliveryKeyPrefix  = "webhook_delivery:"
)

// RedisWatermarkStore implements ports.WatermarkStore on top of the cache.
// Watermarks and reports never expire.
type RedisWatermarkStore struct {
	cache cache.Cache
}

// NewRedisWatermarkStore creates a new RedisWatermarkStore.
func NewRedisWatermarkStore(c cache.Cache) *RedisWatermarkStore {
	return &RedisWatermarkStore{cache: c}
}

// Get returns the stored watermark for the tenant.
func (s *RedisWatermarkStore) Get(ctx context.Context, tenantID string) (time.Time, bool, error) {
	data, err := s.cache.Get(ctx, watermarkKeyPrefix+tenantID)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get watermark: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse watermark %q: %w", data, err)
	}

	return t.UTC(), true, nil
}

// Set stores the watermark for the tenant.
func (s *RedisWatermarkStore) Set(ctx context.Context, tenantID string, t time.Time) error {
	value := []byte(t.UTC().Format(time.RFC3339Nano))
	if err := s.cache.Set(ctx, watermarkKeyPrefix+tenantID, value, 0); err != nil {
		return fmt.Errorf("failed to save watermark: %w", err)
	}
	return nil
}

// Reset forgets the tenant's watermark so the next poll falls back to the database.
func (s *RedisWatermarkStore) Reset(ctx context.Context, tenantID string) error {
	if err := s.cache.Delete(ctx, watermarkKeyPrefix+tenantID); err != nil {
		return fmt.Errorf("failed to reset watermark: %w", err)
	}
	return nil
}

// SaveReport stores the summary as the tenant's last poll.
func (s *RedisWatermarkStore) SaveReport(ctx context.Context, summary *domain.PollSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal poll report: %w", err)
	}

	if err := s.cache.Set(ctx, reportKeyPrefix+summary.TenantID, data, 0); err != nil {
		return fmt.Errorf("failed to save poll report: %w", err)
	}

	return nil
}

// LastReport returns the tenant's last poll summary, or nil if none was recorded.
func (s *RedisWatermarkStore) LastReport(ctx context.Context, tenantID string) (*domain.PollSummary, error) {
	data, err := s.cache.Get(ctx, reportKeyPrefix+tenantID)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll report: %w", err)
	}

	var summary domain.PollSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll report: %w", err)
	}

	return &summary, nil
}

// RedisDeliveryStore implements ports.DeliveryStore. Entries expire after ttl.
type RedisDeliveryStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisDeliveryStore creates a new RedisDeliveryStore.
func NewRedisDeliveryStore(c cache.Cache, ttl time.Duration) *RedisDeliveryStore {
	return &RedisDeliveryStore{cache: c, ttl: ttl}
}

// IsProcessed reports whether the delivery was already applied.
func (s *RedisDeliveryStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	ok, err := s.cache.Exists(ctx, deliveryKeyPrefix+deliveryID)
	if err != nil {
		return false, fmt.Errorf("failed to check delivery: %w", err)
	}
	return ok, nil
}

// MarkProcessed records the delivery. Marking twice is harmless.
func (s *RedisDeliveryStore) MarkProcessed(ctx context.Context, deliveryID string) error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339))
	if _, err := s.cache.SetNX(ctx, deliveryKeyPrefix+deliveryID, stamp, s.ttl); err != nil {
		return fmt.Errorf("failed to mark delivery: %w", err)
	}
	return nil
}
