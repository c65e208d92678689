package checkout

// ItemRequest mirrors one cart line as the storefront submits it. The name,
// brand and price fields are informational; the server snapshots those from
// the products table during validation.
type ItemRequest struct {
	ProductID       string   `json:"product_id"`
	ProductName     string   `json:"product_name"`
	ProductBrand    string   `json:"product_brand"`
	ProductSKU      string   `json:"product_sku"`
	ProductImageURL string   `json:"product_image_url,omitempty"`
	ProductPrice    float64  `json:"product_price"`
	SalePrice       *float64 `json:"sale_price,omitempty"`
	Quantity        int      `json:"quantity"`
	LineTotal       float64  `json:"line_total"`
}

type Request struct {
	Subtotal          float64       `json:"subtotal"`
	ShippingCost      float64       `json:"shipping_cost"`
	TaxAmount         float64       `json:"tax_amount"`
	DiscountAmount    float64       `json:"discount_amount,omitempty"`
	TotalAmount       float64       `json:"total_amount"`
	Currency          string        `json:"currency,omitempty"`
	PaymentMethod     string        `json:"payment_method"`
	ShippingAddressID string        `json:"shipping_address_id"`
	BillingAddressID  string        `json:"billing_address_id"`
	ShippingMethod    string        `json:"shipping_method"`
	PromoCode         string        `json:"promo_code,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	GuestEmail        string        `json:"guest_email,omitempty"`
	Items             []ItemRequest `json:"order_items"`
}
