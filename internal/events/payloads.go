package events

// OrderPayload is carried by the order.* events.
type OrderPayload struct {
	OrderID        string  `json:"order_id"`
	Number         string  `json:"number"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status,omitempty"`
	PaymentStatus  string  `json:"payment_status"`
	Total          float64 `json:"total"`
	CustomerID     string  `json:"customer_id"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerName   string  `json:"customer_name"`
}

// CustomerPayload is carried by the customer.* events.
type CustomerPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// NewsletterPayload is carried by newsletter.subscribed.
type NewsletterPayload struct {
	Email string `json:"email"`
}
