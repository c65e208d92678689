package orders

import "time"

type Order struct {
	ID                string        `json:"id"`
	OrderNumber       string        `json:"order_number"`
	UserID            string        `json:"user_id,omitempty"`
	GuestEmail        string        `json:"guest_email,omitempty"`
	Status            Status        `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	PaymentMethod     string        `json:"payment_method"`
	PaymentRef        string        `json:"payment_ref,omitempty"`
	Subtotal          float64       `json:"subtotal"`
	ShippingCost      float64       `json:"shipping_cost"`
	TaxAmount         float64       `json:"tax_amount"`
	DiscountAmount    float64       `json:"discount_amount"`
	TotalAmount       float64       `json:"total_amount"`
	Currency          string        `json:"currency"`
	ShippingAddressID string        `json:"shipping_address_id"`
	BillingAddressID  string        `json:"billing_address_id"`
	ShippingMethod    string        `json:"shipping_method"`
	PromoCode         string        `json:"promo_code,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	DeliveredAt       *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Items             []OrderItem   `json:"order_items"`
}

// OrderItem is an immutable snapshot of the product at purchase time. Later
// price or name changes on the product never touch these rows.
type OrderItem struct {
	ID              string   `json:"id"`
	OrderID         string   `json:"order_id"`
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

// LineItem is a validated line ready to be written: product fields come from
// the products table, not from the client.
type LineItem struct {
	ProductID string
	Name      string
	Brand     string
	SKU       string
	ImageURL  string
	ListPrice float64
	SalePrice *float64
	UnitPrice float64 // effective price charged
	Quantity  int
	LineTotal float64
}

// NewOrder is the input to CreateOrderTx. UserID empty means guest checkout.
type NewOrder struct {
	UserID            string
	GuestEmail        string
	Items             []LineItem
	Subtotal          float64
	ShippingCost      float64
	TaxAmount         float64
	DiscountAmount    float64
	TotalAmount       float64
	Currency          string
	PaymentMethod     string
	PaymentRef        string
	ShippingAddressID string
	BillingAddressID  string
	ShippingMethod    string
	PromoCode         string
	Notes             string
}

type AdjustmentType string

const (
	AdjustmentSale    AdjustmentType = "sale"
	AdjustmentRestock AdjustmentType = "restock"
	AdjustmentManual  AdjustmentType = "manual"
)

// InventoryAdjustment is one row of the append-only stock ledger.
type InventoryAdjustment struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"product_id"`
	AdjustmentType AdjustmentType `json:"adjustment_type"`
	QuantityChange int            `json:"quantity_change"`
	OldQuantity    int            `json:"old_quantity"`
	NewQuantity    int            `json:"new_quantity"`
	Reason         string         `json:"reason"`
	AdminID        string         `json:"admin_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type StatusHistory struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	OldStatus *Status   `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
