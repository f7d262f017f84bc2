package models

// Order statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment methods and statuses.
const (
	PaymentCOD      = "cod"
	PaymentCashfree = "cashfree"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
	PaymentFailed = "failed"
)

// ValidOrderStatuses lists the statuses an order may be moved to.
var ValidOrderStatuses = map[string]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderShipped:    true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	Base
	OrderID   string  `json:"order_id" gorm:"type:varchar(36);index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // effective price at the time of order
}

// Order represents a customer order.
type Order struct {
	Base
	StoreID          string      `json:"store_id" gorm:"type:varchar(36);index"`
	CustomerID       string      `json:"customer_id" gorm:"type:varchar(36);index"`
	Number           string      `json:"number" gorm:"type:varchar(32);uniqueIndex"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal         float64     `json:"subtotal"`
	ShippingCost     float64     `json:"shipping_cost"`
	Total            float64     `json:"total"`
	Status           string      `json:"status" gorm:"type:varchar(20);index"`
	PaymentMethod    string      `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus    string      `json:"payment_status" gorm:"type:varchar(20)"`
	PaymentRef       string      `json:"payment_ref,omitempty"`
	ShippingMethodID string      `json:"shipping_method_id" gorm:"type:varchar(36)"`
	ShippingAddress  string      `json:"shipping_address"`
}

// ShippingMethod is a delivery option offered by a store.
type ShippingMethod struct {
	Base
	StoreID  string  `json:"store_id" gorm:"type:varchar(36);index"`
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Cost     float64 `json:"cost" validate:"gte=0"`
	FreeOver float64 `json:"free_over" validate:"gte=0"`
	Active   bool    `json:"active"`
}

// CostFor returns the shipping cost for an order subtotal.
func (m ShippingMethod) CostFor(subtotal float64) float64 {
	if m.FreeOver > 0 && subtotal >= m.FreeOver {
		return 0
	}
	return m.Cost
}
