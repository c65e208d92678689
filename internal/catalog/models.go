package catalog

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category,omitempty"`
	SKU           string    `json:"sku"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Price         float64   `json:"price"`
	SalePrice     *float64  `json:"sale_price,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	SalesCount    int       `json:"sales_count"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectivePrice is the price a buyer actually pays: sale_price when a sale
// is running, the regular price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
