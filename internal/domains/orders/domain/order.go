package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a frozen copy of a cart line at checkout; later catalog changes never touch it.
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewLineItem snapshots a product line, computing the subtotal at two decimal places.
func NewLineItem(productID, productName string, quantity int, unitPrice decimal.Decimal) LineItem {
	price := unitPrice.Round(2)
	return LineItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
}

// Order is the immutable record of a checkout plus its mutable fulfilment status.
type Order struct {
	ID              string
	OrderNumber     string
	DealerID        string
	Items           []LineItem
	TotalAmount     decimal.Decimal
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	Status          Status
	DeliveryAddress string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder builds a pending order from snapshot lines.
func NewOrder(id, number, dealerID string, items []LineItem, method PaymentMethod, address, notes string, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if method != PaymentCOD && method != PaymentAccount {
		return nil, ErrInvalidPaymentMethod
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyDeliveryAddress
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return &Order{
		ID:              id,
		OrderNumber:     number,
		DealerID:        dealerID,
		Items:           append([]LineItem(nil), items...),
		TotalAmount:     total.Round(2),
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		DeliveryAddress: address,
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DrawsCredit reports whether the order is booked against the dealer's credit line.
func (o *Order) DrawsCredit() bool {
	return o.PaymentMethod == PaymentAccount
}

// TransitionTo moves the order along the status table and returns the previous status.
// Cash orders are marked paid on delivery.
func (o *Order) TransitionTo(next Status, now time.Time) (Status, error) {
	previous := o.Status
	if !previous.CanTransitionTo(next) {
		return previous, &InvalidTransitionError{From: previous, To: next}
	}
	o.Status = next
	if next == StatusDelivered && o.PaymentMethod == PaymentCOD {
		o.PaymentStatus = PaymentCompleted
	}
	o.UpdatedAt = now
	return previous, nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}

// NewOrderNumber formats ORD-YYYYMMDDHHMMSS-XXXXXX with six upper-case hex digits read from random.
func NewOrderNumber(now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	suffix := make([]byte, 3)
	if _, err := io.ReadFull(random, suffix); err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
