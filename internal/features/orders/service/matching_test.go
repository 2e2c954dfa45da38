package service

import (
	"context"
	"errors"
	"testing"

	"storefront-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-1"

func product(id, name string) domain.CatalogProduct {
	return domain.CatalogProduct{ID: id, TenantID: tenant, Name: name}
}

func TestStripDosage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BPC-157 10mg", "bpc-157"},
		{"BPC-157", "bpc-157"},
		{"Semaglutide 2.5mg", "semaglutide"},
		{"Semaglutide 2,5MG", "semaglutide"},
		{"HGH 10IU", "hgh"},
		{"Bac Water 30ml", "bac water"},
		{"Tesamorelin 10mg/2mg", "tesamorelin"},
		{"Test Kit 2vials", "test kit"},
		{"Starter 1kits", "starter"},
		{"GHK-Cu 50mcg", "ghk-cu"},
		{"BPC-157 10 mg", "bpc-157 10 mg"},
		{"NAD+10mg", "nad+10mg"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripDosage(tt.in))
		})
	}
}

func TestApplyAlias(t *testing.T) {
	assert.Equal(t, "Tirzepatide 5mg", applyAlias("GLP2-T 5mg"))
	assert.Equal(t, "Retatrutide 10mg", applyAlias("GLP3-R 10mg"))
	assert.Equal(t, "Tesamorelin/Ipamorelin Blnd 10mg", applyAlias("Tesamorelin/Ipamorelin Blend 10mg"))
	assert.Equal(t, "glp2-t 5mg", applyAlias("glp2-t 5mg"), "prefix match is case-sensitive")
	assert.Equal(t, "BPC-157", applyAlias("BPC-157"))
}

func TestNewCatalogContext_StableOrder(t *testing.T) {
	cc := NewCatalogContext(tenant, []domain.CatalogProduct{
		product("p-3", "tb500"),
		product("p-2", "BPC-157"),
		product("p-1", "bpc-157"),
	})

	require.Equal(t, 3, cc.Len())
	assert.Equal(t, "p-1", cc.entries[0].product.ID)
	assert.Equal(t, "p-2", cc.entries[1].product.ID)
	assert.Equal(t, "p-3", cc.entries[2].product.ID)
	assert.Equal(t, tenant, cc.TenantID())
}

func TestProductMatcher_Precedence(t *testing.T) {
	ctx := context.Background()
	matcher := NewProductMatcher(nil)

	t.Run("ExactBeatsStripped", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-base", "BPC-157"),
			product("p-10", "BPC-157 10mg"),
		})

		got, err := matcher.Match(ctx, "bpc-157 10MG", tenant, cc)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-10", got.ID)
	})

	t.Run("StrippedBeatsContains", func(t *testing.T) {
		// "Arginate BPC-157" sorts first and would win by containment.
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-arg", "Arginate BPC-157"),
			product("p-base", "BPC-157"),
		})

		got, err := matcher.Match(ctx, "BPC-157 10mg", tenant, cc)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-base", got.ID)
	})

	t.Run("StrippedOnCatalogSide", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-1", "BPC-157 5mg")})

		got, err := matcher.Match(ctx, "BPC-157", tenant, cc)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-1", got.ID)
	})

	t.Run("AliasThenStrip", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-sema", "Semaglutide"),
			product("p-tirz", "Tirzepatide"),
		})

		got, err := matcher.Match(ctx, "GLP2-T 5mg", tenant, cc)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-tirz", got.ID)
	})

	t.Run("ContainsEitherDirection", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-1", "CJC-1295 No DAC")})

		got, err := matcher.Match(ctx, "CJC-1295 10mg", tenant, cc)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-1", got.ID)

		got, err = matcher.Match(ctx, "Premium CJC-1295 No DAC Blend", tenant, cc)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-1", got.ID)
	})

	t.Run("ContainsFirstInNameOrder", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-z", "Zeta TB500 Mix"),
			product("p-a", "Alpha TB500 Mix"),
		})

		got, err := matcher.Match(ctx, "TB500", tenant, cc)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-a", got.ID)
	})

	t.Run("NoMatch", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-1", "BPC-157")})

		got, err := matcher.Match(ctx, "Mystery Peptide", tenant, cc)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EmptyCatalogNameNeverContains", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-empty", " 10mg")})

		got, err := matcher.Match(ctx, "Anything", tenant, cc)

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestProductMatcher_LoadsCatalogWhenMissing(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads", func(t *testing.T) {
		repo := new(MockCatalogRepository)
		repo.On("ListByTenant", ctx, tenant).Return([]domain.CatalogProduct{product("p-1", "BPC-157")}, nil).Once()
		matcher := NewProductMatcher(repo)

		got, err := matcher.Match(ctx, "BPC-157 10mg", tenant, nil)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "p-1", got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockCatalogRepository)
		repo.On("ListByTenant", ctx, tenant).Return(nil, errors.New("db error")).Once()
		matcher := NewProductMatcher(repo)

		got, err := matcher.Match(ctx, "BPC-157", tenant, nil)

		assert.Nil(t, got)
		assert.Error(t, err)
	})
}

func TestBundleExpander_Expand(t *testing.T) {
	ctx := context.Background()
	expander := NewBundleExpander(NewProductMatcher(nil))

	bundle := domain.ExternalLineItem{
		Name:     "BPC-157 + TB-500 Bundle",
		Quantity: 1,
		Total:    decimal.NewFromInt(100),
	}

	t.Run("AllComponents", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-bpc", "BPC-157"),
			product("p-tb", "TB500"),
		})

		lines, err := expander.Expand(ctx, bundle, tenant, cc)

		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "p-bpc", lines[0].ProductID)
		assert.Equal(t, "p-tb", lines[1].ProductID)
		for _, l := range lines {
			assert.Equal(t, 1, l.Quantity)
			assert.True(t, l.UnitPrice.Equal(decimal.NewFromInt(50)), "got %s", l.UnitPrice)
		}
	})

	t.Run("PartialNotRebalanced", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-bpc", "BPC-157")})

		lines, err := expander.Expand(ctx, bundle, tenant, cc)

		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(50)))
	})

	t.Run("QuantitySplitsUnitPrice", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{
			product("p-mots", "MOTS-C"),
			product("p-ss", "SS-31"),
		})
		item := domain.ExternalLineItem{
			Name:     "MOTS-C 40mg + SS-31 50mg Bundle",
			Quantity: 2,
			Total:    decimal.NewFromInt(200),
		}

		lines, err := expander.Expand(ctx, item, tenant, cc)

		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, 2, lines[0].Quantity)
		assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(50)))
	})

	t.Run("NoComponents", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-1", "Semaglutide")})

		lines, err := expander.Expand(ctx, bundle, tenant, cc)

		require.NoError(t, err)
		assert.Nil(t, lines)
	})

	t.Run("NotABundle", func(t *testing.T) {
		cc := NewCatalogContext(tenant, []domain.CatalogProduct{product("p-bpc", "BPC-157")})
		item := domain.ExternalLineItem{Name: "BPC-157 10mg", Quantity: 1, Total: decimal.NewFromInt(40)}

		lines, err := expander.Expand(ctx, item, tenant, cc)

		require.NoError(t, err)
		assert.Nil(t, lines)
		assert.False(t, IsBundle(item.Name))
		assert.True(t, IsBundle(bundle.Name))
	})
}

func TestCostEngine_ComputeCOGS(t *testing.T) {
	ctx := context.Background()

	t.Run("AveragesLots", func(t *testing.T) {
		lots := memLots{
			{ID: "l-1", ProductID: "p", CostPerUnit: decimal.NewNullDecimal(decimal.NewFromInt(2))},
			{ID: "l-2", ProductID: "p", CostPerUnit: decimal.NewNullDecimal(decimal.NewFromInt(4))},
		}
		engine := NewCostEngine(lots)

		cogs, err := engine.ComputeCOGS(ctx, tenant, []domain.OrderLineItem{{ProductID: "p", Quantity: 3}})

		require.NoError(t, err)
		assert.True(t, cogs.Equal(decimal.NewFromInt(9)), "got %s", cogs)
	})

	t.Run("MissingCostCountsAsZero", func(t *testing.T) {
		lots := memLots{
			{ID: "l-1", ProductID: "p", CostPerUnit: decimal.NewNullDecimal(decimal.NewFromInt(6))},
			{ID: "l-2", ProductID: "p"},
		}
		engine := NewCostEngine(lots)

		cogs, err := engine.ComputeCOGS(ctx, tenant, []domain.OrderLineItem{{ProductID: "p", Quantity: 2}})

		require.NoError(t, err)
		assert.True(t, cogs.Equal(decimal.NewFromInt(6)), "got %s", cogs)
	})

	t.Run("ProductWithoutLots", func(t *testing.T) {
		engine := NewCostEngine(memLots{})

		cogs, err := engine.ComputeCOGS(ctx, tenant, []domain.OrderLineItem{{ProductID: "p", Quantity: 5}})

		require.NoError(t, err)
		assert.True(t, cogs.IsZero())
	})

	t.Run("NoItemsSkipsQuery", func(t *testing.T) {
		repo := new(MockCostLotRepository)
		engine := NewCostEngine(repo)

		cogs, err := engine.ComputeCOGS(ctx, tenant, nil)

		require.NoError(t, err)
		assert.True(t, cogs.IsZero())
		repo.AssertNotCalled(t, "ListByTenant")
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockCostLotRepository)
		repo.On("ListByTenant", ctx, tenant).Return(nil, errors.New("db error")).Once()
		engine := NewCostEngine(repo)

		_, err := engine.ComputeCOGS(ctx, tenant, []domain.OrderLineItem{{ProductID: "p", Quantity: 1}})

		assert.Error(t, err)
	})
}

func TestContactResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	order := &domain.ExternalOrder{
		ID:       42,
		Number:   "1042",
		Status:   "processing",
		Billing:  domain.Billing{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "555-0100"},
		Shipping: domain.Address{Address1: "1 Main St", City: "Springfield", State: "IL", Postcode: "62701"},
	}

	t.Run("ExistingByEmail", func(t *testing.T) {
		contacts := &memContacts{contacts: []*domain.Contact{{ID: "c-1", TenantID: tenant, Email: "jane@example.com"}}}
		resolver := NewContactResolver(contacts)

		id, err := resolver.Resolve(ctx, order, tenant)

		require.NoError(t, err)
		assert.Equal(t, "c-1", id)
		assert.Len(t, contacts.contacts, 1)
	})

	t.Run("CreatesContact", func(t *testing.T) {
		contacts := &memContacts{}
		resolver := NewContactResolver(contacts)

		id, err := resolver.Resolve(ctx, order, tenant)

		require.NoError(t, err)
		require.Len(t, contacts.contacts, 1)
		c := contacts.contacts[0]
		assert.Equal(t, id, c.ID)
		assert.Equal(t, "Jane Doe", c.Name)
		assert.Equal(t, "555-0100", c.Phone)
		assert.Equal(t, "1 Main St, Springfield, IL 62701", c.Address)
		assert.Equal(t, domain.ContactTypeCustomer, c.Type)
		assert.Equal(t, "Auto-created from WooCommerce order #1042", c.Notes)
	})

	t.Run("NoEmailNoNameNoAddress", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("Create", ctx, &domain.Contact{
			TenantID: tenant,
			Name:     "Customer",
			Type:     domain.ContactTypeCustomer,
			Notes:    "Auto-created from WooCommerce order #7",
		}).Return(nil).Once()
		resolver := NewContactResolver(repo)

		_, err := resolver.Resolve(ctx, &domain.ExternalOrder{ID: 7, Status: "pending"}, tenant)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "FindByEmail")
	})

	t.Run("CreateErrorPropagates", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("FindByEmail", ctx, tenant, "jane@example.com").Return(nil, domain.ErrContactNotFound).Once()
		repo.On("Create", ctx, &domain.Contact{
			TenantID: tenant,
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "555-0100",
			Address:  "1 Main St, Springfield, IL 62701",
			Type:     domain.ContactTypeCustomer,
			Notes:    "Auto-created from WooCommerce order #1042",
		}).Return(errors.New("insert failed")).Once()
		resolver := NewContactResolver(repo)

		_, err := resolver.Resolve(ctx, order, tenant)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating contact")
		repo.AssertExpectations(t)
	})

	t.Run("LookupErrorPropagates", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("FindByEmail", ctx, tenant, "jane@example.com").Return(nil, errors.New("timeout")).Once()
		resolver := NewContactResolver(repo)

		_, err := resolver.Resolve(ctx, order, tenant)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Create")
	})
}
