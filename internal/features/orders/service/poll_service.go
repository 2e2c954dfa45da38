package service

import (
	"context"
	"fmt"
	"time"

	"storefront-sync/internal/core/config"
	"storefront-sync/internal/core/logger"
	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"go.uber.org/zap"
)

// windowOverlap widens each query below the watermark. The storefront filter is exclusive and
// second-granular, so orders sharing the watermark's second would otherwise never be fetched.
const windowOverlap = time.Second

// PollService re-fetches recently modified storefront orders and syncs them one at a time.
type PollService struct {
	provider   ports.OrderProvider
	syncer     ports.OrderSyncer
	orders     ports.OrderRepository
	watermarks ports.WatermarkStore
	cfg        config.SyncConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewPollService creates a new PollService.
func NewPollService(
	provider ports.OrderProvider,
	syncer ports.OrderSyncer,
	orders ports.OrderRepository,
	watermarks ports.WatermarkStore,
	cfg config.SyncConfig,
) *PollService {
	return &PollService{
		provider:   provider,
		syncer:     syncer,
		orders:     orders,
		watermarks: watermarks,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.Named("poller"),
	}
}

// Poll syncs every order modified after since. A nil since resumes from the tenant's watermark.
// Per-order failures, invalid orders included, are counted in the summary and hold the watermark.
// Only a listing failure aborts the run.
func (p *PollService) Poll(ctx context.Context, tenantID string, since *time.Time) (*domain.PollSummary, error) {
	summary := &domain.PollSummary{
		TenantID:  tenantID,
		StartedAt: p.now().UTC(),
		Results:   []domain.SyncResult{},
	}

	from, err := p.resolveSince(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	summary.Since = from

	orders, err := p.fetch(ctx, from.Add(-windowOverlap))
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(orders)

	watermark := from
	failed := false
	for i := range orders {
		order := &orders[i]

		res, err := p.syncOrder(ctx, order, tenantID)
		if err != nil {
			failed = true
			p.logger.Error("Failed to sync order",
				zap.String("tenant_id", tenantID),
				zap.Int64("external_order_id", order.ID),
				zap.Error(err),
			)
			summary.Record(domain.SyncResult{OrderNumber: order.OrderNumber(), Error: err.Error()})
			continue
		}

		summary.Record(*res)
		if !failed && order.DateModified.After(watermark) {
			watermark = order.DateModified
		}
	}
	summary.Watermark = watermark

	if watermark.After(from) {
		if err := p.watermarks.Set(ctx, tenantID, watermark); err != nil {
			p.logger.Warn("Failed to save watermark", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	summary.FinishedAt = p.now().UTC()
	if err := p.watermarks.SaveReport(ctx, summary); err != nil {
		p.logger.Warn("Failed to save poll report", zap.String("tenant_id", tenantID), zap.Error(err))
	}

	p.logger.Info("Poll finished",
		zap.String("tenant_id", tenantID),
		zap.Time("since", from),
		zap.Int("fetched", summary.Fetched),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)

	return summary, nil
}

// syncOrder rejects orders the storefront sent malformed before handing the rest to the syncer.
func (p *PollService) syncOrder(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return p.syncer.Sync(ctx, order, tenantID)
}

// resolveSince picks the window start: explicit value, stored watermark, newest synced order, lookback.
func (p *PollService) resolveSince(ctx context.Context, tenantID string, since *time.Time) (time.Time, error) {
	if since != nil {
		return since.UTC(), nil
	}

	wm, ok, err := p.watermarks.Get(ctx, tenantID)
	if err != nil {
		p.logger.Warn("Failed to read watermark, falling back to database", zap.String("tenant_id", tenantID), zap.Error(err))
	} else if ok {
		return wm, nil
	}

	latest, ok, err := p.orders.LatestExternalModified(ctx, tenantID)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolving poll window: %w", err)
	}
	if ok {
		return latest.UTC(), nil
	}

	return p.now().UTC().Add(-p.cfg.Lookback), nil
}

func (p *PollService) fetch(ctx context.Context, since time.Time) ([]domain.ExternalOrder, error) {
	pageSize := p.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	maxPages := p.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	var all []domain.ExternalOrder
	for page := 1; page <= maxPages; page++ {
		batch, err := p.provider.ListModifiedSince(ctx, since, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("listing orders page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	return all, nil
}

// SyncOne fetches a single storefront order and syncs it.
func (p *PollService) SyncOne(ctx context.Context, tenantID string, orderID int64) (*domain.SyncResult, error) {
	order, err := p.provider.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetching order %d: %w", orderID, err)
	}
	return p.syncer.Sync(ctx, order, tenantID)
}

// Status returns the tenant's watermark and last poll report.
func (p *PollService) Status(ctx context.Context, tenantID string) (*ports.SyncStatus, error) {
	status := &ports.SyncStatus{TenantID: tenantID}

	wm, ok, err := p.watermarks.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if ok {
		status.Watermark = &wm
	}

	report, err := p.watermarks.LastReport(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	status.LastRun = report

	return status, nil
}

// ResetWatermark forgets the tenant's progress.
func (p *PollService) ResetWatermark(ctx context.Context, tenantID string) error {
	return p.watermarks.Reset(ctx, tenantID)
}
