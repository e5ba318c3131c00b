package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
)

type normalizedPlaceOrderInput struct {
	DealerID        string `json:"dealerId"`
	PaymentMethod   string `json:"paymentMethod"`
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

// FingerprintPlaceOrder builds a deterministic hash of the checkout request (excluding the idempotency key).
func FingerprintPlaceOrder(input ordertypes.PlaceOrderInput) (string, error) {
	payload, err := json.Marshal(normalizedPlaceOrderInput{
		DealerID:        strings.TrimSpace(input.DealerID),
		PaymentMethod:   strings.ToLower(strings.TrimSpace(input.PaymentMethod)),
		DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
		Notes:           strings.TrimSpace(input.Notes),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
