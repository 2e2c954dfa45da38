package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-sync/internal/features/orders/domain"
	"storefront-sync/internal/features/orders/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of ports.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, tenantID string, externalID int64) (*domain.InternalOrder, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InternalOrder), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.InternalOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertLineItems(ctx context.Context, orderID string, items []domain.OrderLineItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, update domain.OrderStatusUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockOrderRepository) LatestExternalModified(ctx context.Context, tenantID string) (time.Time, bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

// MockContactRepository is a mock implementation of ports.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByEmail(ctx context.Context, tenantID, email string) (*domain.Contact, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of ports.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CatalogProduct, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogProduct), args.Error(1)
}

// MockCostLotRepository is a mock implementation of ports.CostLotRepository
type MockCostLotRepository struct {
	mock.Mock
}

func (m *MockCostLotRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CostLot, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostLot), args.Error(1)
}

// MockOrderProvider is a mock implementation of ports.OrderProvider
type MockOrderProvider struct {
	mock.Mock
}

func (m *MockOrderProvider) GetOrder(ctx context.Context, orderID int64) (*domain.ExternalOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalOrder), args.Error(1)
}

func (m *MockOrderProvider) ListModifiedSince(ctx context.Context, since time.Time, page, perPage int) ([]domain.ExternalOrder, error) {
	args := m.Called(ctx, since, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalOrder), args.Error(1)
}

func (m *MockOrderProvider) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

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

// MockWatermarkStore is a mock implementation of ports.WatermarkStore
type MockWatermarkStore struct {
	mock.Mock
}

func (m *MockWatermarkStore) Get(ctx context.Context, tenantID string) (time.Time, bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockWatermarkStore) Set(ctx context.Context, tenantID string, t time.Time) error {
	args := m.Called(ctx, tenantID, t)
	return args.Error(0)
}

func (m *MockWatermarkStore) Reset(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockWatermarkStore) SaveReport(ctx context.Context, summary *domain.PollSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockWatermarkStore) LastReport(ctx context.Context, tenantID string) (*domain.PollSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PollSummary), args.Error(1)
}

// memOrders is an in-memory ports.OrderRepository enforcing the (tenant, external id) uniqueness.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]*domain.InternalOrder
	items  map[string][]domain.OrderLineItem
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders: make(map[string]*domain.InternalOrder),
		items:  make(map[string][]domain.OrderLineItem),
	}
}

func (r *memOrders) FindByExternalID(_ context.Context, tenantID string, externalID int64) (*domain.InternalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.ExternalOrderID == externalID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrders) Create(_ context.Context, order *domain.InternalOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TenantID == order.TenantID && o.ExternalOrderID == order.ExternalOrderID {
			return domain.ErrDuplicateOrder
		}
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrders) InsertLineItems(_ context.Context, orderID string, items []domain.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[orderID] = append(r.items[orderID], items...)
	return nil
}

func (r *memOrders) UpdateStatus(_ context.Context, u domain.OrderStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[u.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = u.Status
	o.PaymentStatus = u.PaymentStatus
	o.Total = u.Total
	o.MerchantFee = u.MerchantFee
	o.Profit = u.Profit
	o.ExternalStatus = u.ExternalStatus
	o.ExternalModifiedAt = u.ExternalModifiedAt
	return nil
}

func (r *memOrders) LatestExternalModified(_ context.Context, tenantID string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest time.Time
	found := false
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.ExternalModifiedAt.After(latest) {
			latest = o.ExternalModifiedAt
			found = true
		}
	}
	return latest, found, nil
}

func (r *memOrders) all() []*domain.InternalOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.InternalOrder, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalOrderID < out[j].ExternalOrderID })
	return out
}

// memContacts is an in-memory ports.ContactRepository.
type memContacts struct {
	mu       sync.Mutex
	contacts []*domain.Contact
}

func (r *memContacts) FindByEmail(_ context.Context, tenantID, email string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.TenantID == tenantID && c.Email == email {
			return c, nil
		}
	}
	return nil, domain.ErrContactNotFound
}

func (r *memContacts) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contact.ID = uuid.NewString()
	r.contacts = append(r.contacts, contact)
	return nil
}

type memCatalog []domain.CatalogProduct

func (c memCatalog) ListByTenant(_ context.Context, tenantID string) ([]domain.CatalogProduct, error) {
	var out []domain.CatalogProduct
	for _, p := range c {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memLots []domain.CostLot

func (l memLots) ListByTenant(context.Context, string) ([]domain.CostLot, error) {
	return l, nil
}

var (
	_ ports.OrderRepository   = (*memOrders)(nil)
	_ ports.ContactRepository = (*memContacts)(nil)
	_ ports.CatalogRepository = memCatalog(nil)
	_ ports.CostLotRepository = memLots(nil)
)
