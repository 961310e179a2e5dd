package memory

import (
	"context"
	"strings"
	"sync"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

// PaymentGateway approves every charge; dev mode only.
type PaymentGateway struct {
	mu      sync.Mutex
	charges []ChargeRecord
}

type ChargeRecord struct {
	Amount      money.Money
	Source      string
	Destination string
}

func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{}
}

func (g *PaymentGateway) Charge(ctx context.Context, amount money.Money, source, destinationAccount string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, ChargeRecord{Amount: amount, Source: source, Destination: destinationAccount})
	return nil
}

func (g *PaymentGateway) Connect(ctx context.Context, code string) (string, error) {
	return "acct_dev_" + code, nil
}

func (g *PaymentGateway) Disconnect(ctx context.Context, walletID string) error {
	return nil
}

func (g *PaymentGateway) Charges() []ChargeRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ChargeRecord(nil), g.charges...)
}

// Geocoder splits a "city, admin, country" location without calling out to a
// real geocoding API.
type Geocoder struct{}

func (Geocoder) Geocode(ctx context.Context, address string) (policies.Region, error) {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	var region policies.Region
	switch len(parts) {
	case 0:
	case 1:
		region.Country = parts[0]
	case 2:
		region.City = parts[0]
		region.Country = parts[1]
	default:
		region.City = parts[0]
		region.Admin = parts[1]
		region.Country = parts[2]
	}
	return region, nil
}

var _ policies.PaymentGateway = (*PaymentGateway)(nil)
var _ policies.Geocoder = Geocoder{}
