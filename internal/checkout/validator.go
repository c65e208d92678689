package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

// the declared subtotal may drift from the recomputation by at most a cent
const subtotalEpsilon = 0.01

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Validator recomputes every line against current product state. All-or-
// nothing: the first bad line fails the whole order before anything is
// written or charged.
type Validator struct {
	Products ProductReader
}

// Validate returns server-priced line items and the recomputed subtotal.
// Stock here is a fast unlocked pre-check; the write transaction re-checks
// under a row lock.
func (v *Validator) Validate(ctx context.Context, items []ItemRequest, declaredSubtotal float64) ([]orders.LineItem, float64, error) {
	lines := make([]orders.LineItem, 0, len(items))
	var subtotal float64

	for _, it := range items {
		p, err := v.Products.GetProduct(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: %s", orders.ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return nil, 0, err
		}
		if !p.IsActive {
			return nil, 0, fmt.Errorf("%w: %s", orders.ErrProductNotFound, it.ProductID)
		}
		if p.StockQuantity < it.Quantity {
			return nil, 0, &orders.InsufficientStockError{
				ProductID: p.ID, Name: p.Name,
				Requested: it.Quantity, Available: p.StockQuantity,
			}
		}

		unit := p.EffectivePrice()
		lineTotal := unit * float64(it.Quantity)
		subtotal += lineTotal

		lines = append(lines, orders.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			SKU:       p.SKU,
			ImageURL:  p.ImageURL,
			ListPrice: p.Price,
			SalePrice: p.SalePrice,
			UnitPrice: unit,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})
	}

	if math.Abs(subtotal-declaredSubtotal) > subtotalEpsilon {
		return nil, 0, &orders.SubtotalMismatchError{Declared: declaredSubtotal, Computed: subtotal}
	}
	return lines, subtotal, nil
}
