package policies

import (
	"context"

	"stayhub/internal/domain/shared/money"
)

// PaymentGateway executes charges against a payment processor on behalf of a
// connected host account. A declined or errored charge must surface as an
// error; it is never swallowed.
type PaymentGateway interface {
	// Charge debits the payment source and routes the amount (minus the
	// platform fee) to the destination account.
	Charge(ctx context.Context, amount money.Money, source, destinationAccount string) error
	// Connect exchanges an OAuth authorization code for a wallet id.
	Connect(ctx context.Context, code string) (walletID string, err error)
	// Disconnect deauthorizes a previously connected wallet.
	Disconnect(ctx context.Context, walletID string) error
}
