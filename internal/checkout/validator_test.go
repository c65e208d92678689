package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type fakeProducts map[string]*catalog.Product

func (f fakeProducts) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func ptr(f float64) *float64 { return &f }

func testProducts() fakeProducts {
	return fakeProducts{
		"p1": {ID: "p1", Name: "Desk Lamp", Brand: "Lumen", SKU: "LAMP-01",
			Price: 10.00, StockQuantity: 5, IsActive: true},
		"p2": {ID: "p2", Name: "Notebook", Brand: "Paperie", SKU: "NOTE-01",
			Price: 4.50, SalePrice: ptr(3.00), StockQuantity: 100, IsActive: true},
		"p3": {ID: "p3", Name: "Retired Mug", Brand: "Lumen", SKU: "MUG-99",
			Price: 7.00, StockQuantity: 10, IsActive: false},
	}
}

func TestValidateHappyPath(t *testing.T) {
	v := &Validator{Products: testProducts()}

	lines, subtotal, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
	}, 16.00)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.InDelta(t, 16.00, subtotal, 1e-9)

	// snapshots come from the catalog, not the request
	assert.Equal(t, "Desk Lamp", lines[0].Name)
	assert.Equal(t, "LAMP-01", lines[0].SKU)
	assert.Equal(t, 10.00, lines[0].UnitPrice)
	assert.Equal(t, 10.00, lines[0].LineTotal)

	// sale price wins when present
	assert.Equal(t, 3.00, lines[1].UnitPrice)
	assert.Equal(t, 4.50, lines[1].ListPrice)
	assert.Equal(t, 6.00, lines[1].LineTotal)
}

func TestValidateProductNotFound(t *testing.T) {
	v := &Validator{Products: testProducts()}

	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}, 10.00)
	assert.ErrorIs(t, err, orders.ErrProductNotFound)
}

func TestValidateInactiveProductIsNotFound(t *testing.T) {
	v := &Validator{Products: testProducts()}

	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p3", Quantity: 1},
	}, 7.00)
	assert.ErrorIs(t, err, orders.ErrProductNotFound)
}

func TestValidateInsufficientStockNamesAvailable(t *testing.T) {
	v := &Validator{Products: testProducts()}

	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 6},
	}, 60.00)

	var se *orders.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "p1", se.ProductID)
	assert.Equal(t, 6, se.Requested)
	assert.Equal(t, 5, se.Available)
	assert.Contains(t, se.Error(), "available 5")
}

func TestValidateSubtotalMismatch(t *testing.T) {
	v := &Validator{Products: testProducts()}

	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, 9.00)

	var me *orders.SubtotalMismatchError
	require.ErrorAs(t, err, &me)
	assert.InDelta(t, 9.00, me.Declared, 1e-9)
	assert.InDelta(t, 10.00, me.Computed, 1e-9)
}

func TestValidateSubtotalEpsilon(t *testing.T) {
	v := &Validator{Products: testProducts()}

	// a cent of drift is tolerated
	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, 10.01)
	assert.NoError(t, err)

	// two cents is not
	_, _, err = v.Validate(context.Background(), []ItemRequest{
		{ProductID: "p1", Quantity: 1},
	}, 10.02)
	var me *orders.SubtotalMismatchError
	assert.ErrorAs(t, err, &me)
}

func TestValidateFirstFailureAbortsAll(t *testing.T) {
	products := testProducts()
	calls := 0
	counting := productReaderFunc(func(ctx context.Context, id string) (*catalog.Product, error) {
		calls++
		return products.GetProduct(ctx, id)
	})
	v := &Validator{Products: counting}

	_, _, err := v.Validate(context.Background(), []ItemRequest{
		{ProductID: "missing", Quantity: 1},
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	}, 10.00)
	require.Error(t, err)
	assert.True(t, errors.Is(err, orders.ErrProductNotFound))
	assert.Equal(t, 1, calls)
}

type productReaderFunc func(ctx context.Context, id string) (*catalog.Product, error)

func (f productReaderFunc) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return f(ctx, id)
}
