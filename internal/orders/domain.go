package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ndiapaly/NBM-Shop-Client/internal/cart"
)

// OrderItem is one order line as the backend expects it.
type OrderItem struct {
	Product  string          `json:"product"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type ShippingAddress struct {
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber"`
	PhoneCode   string `json:"phoneCode,omitempty"`
}

// Order is server-owned; the client holds read-through cache entries and
// only ever patches the payment fields after a confirmed payment.
type Order struct {
	ID              string          `json:"_id"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	Status          string          `json:"status,omitempty"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
}

// GrandTotal is the amount actually charged: items total plus shipping.
func (o Order) GrandTotal() decimal.Decimal {
	return o.TotalPrice.Add(o.ShippingPrice)
}

// CreateOrderInput is the checkout submission payload.
type CreateOrderInput struct {
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// ItemsFromCart projects cart lines into order-line inputs. The cart lines
// themselves are untouched; clearing the cart stays the caller's move after
// the order is confirmed.
func ItemsFromCart(lines []cart.Line) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			Product:  l.ProductID,
			Size:     l.Size,
			Quantity: l.Quantity,
			Price:    l.Price,
		})
	}
	return items
}

// PaymentConfirmation carries the fields patched onto the current order
// after a successful payment round-trip.
type PaymentConfirmation struct {
	PaidAt time.Time
	Status string
}

// State is the orders domain's slice of the state tree. Success is the
// checkout flag the UI observes to trigger cart-clear and navigation; it is
// reset with ClearSuccess between attempts.
type State struct {
	Orders       []Order
	CurrentOrder *Order
	Loading      bool
	Err          string
	Success      bool
}
