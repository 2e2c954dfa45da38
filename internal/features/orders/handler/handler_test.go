package handler

import (
	"context"
	"time"

	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/stretchr/testify/mock"
)

// MockOrderSyncer is a mock implementation of ports.OrderSyncer
type MockOrderSyncer struct {
	mock.Mock
}

func (m *MockOrderSyncer) Sync(ctx context.Context, order *domain.ExternalOrder, tenantID string) (*domain.SyncResult, error) {
	args := m.Called(ctx, order, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

// MockOrderDecoder is a mock implementation of ports.OrderDecoder
type MockOrderDecoder struct {
	mock.Mock
}

func (m *MockOrderDecoder) DecodeOrder(payload []byte) (*domain.ExternalOrder, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalOrder), args.Error(1)
}

// MockDeliveryStore is a mock implementation of ports.DeliveryStore
type MockDeliveryStore struct {
	mock.Mock
}

func (m *MockDeliveryStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryStore) MarkProcessed(ctx context.Context, deliveryID string) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

// MockSyncRunner is a mock implementation of ports.SyncRunner
type MockSyncRunner struct {
	mock.Mock
}

func (m *MockSyncRunner) Poll(ctx context.Context, tenantID string, since *time.Time) (*domain.PollSummary, error) {
	args := m.Called(ctx, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PollSummary), args.Error(1)
}

func (m *MockSyncRunner) Status(ctx context.Context, tenantID string) (*ports.SyncStatus, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SyncStatus), args.Error(1)
}

func (m *MockSyncRunner) SyncOne(ctx context.Context, tenantID string, orderID int64) (*domain.SyncResult, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockSyncRunner) ResetWatermark(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
