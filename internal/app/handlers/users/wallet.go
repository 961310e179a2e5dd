package users

import (
	"context"
	"errors"
	"fmt"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/policies"
	domainuser "stayhub/internal/domain/user"
)

const (
	connectWalletKey    = "users.wallet.connect"
	disconnectWalletKey = "users.wallet.disconnect"
)

var ErrViewerRequired = errors.New("users: viewer can't be found")

type ConnectWalletCommand struct {
	ViewerID string
	Code     string `validate:"required"`
}

func (c ConnectWalletCommand) Key() string { return connectWalletKey }

type DisconnectWalletCommand struct {
	ViewerID string
}

func (c DisconnectWalletCommand) Key() string { return disconnectWalletKey }

type WalletResult struct {
	HasWallet bool `json:"hasWallet"`
}

// ConnectWalletHandler exchanges the OAuth code with the payment provider and
// stores the resulting wallet id, making the user payment-receiving capable.
type ConnectWalletHandler struct {
	Users    domainuser.Repository
	Payments policies.PaymentGateway
}

func (h *ConnectWalletHandler) Handle(ctx context.Context, cmd ConnectWalletCommand) (*WalletResult, error) {
	if cmd.ViewerID == "" {
		return nil, ErrViewerRequired
	}
	walletID, err := h.Payments.Connect(ctx, cmd.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	if err := h.Users.SetWallet(ctx, domainuser.ID(cmd.ViewerID), walletID); err != nil {
		return nil, fmt.Errorf("failed to store wallet id: %w", err)
	}
	return &WalletResult{HasWallet: true}, nil
}

// DisconnectWalletHandler deauthorizes the wallet and clears it from the user
// record; the user can no longer receive bookings until reconnected.
type DisconnectWalletHandler struct {
	Users    domainuser.Repository
	Payments policies.PaymentGateway
}

func (h *DisconnectWalletHandler) Handle(ctx context.Context, cmd DisconnectWalletCommand) (*WalletResult, error) {
	if cmd.ViewerID == "" {
		return nil, ErrViewerRequired
	}
	u, err := h.Users.ByID(ctx, domainuser.ID(cmd.ViewerID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrViewerRequired
		}
		return nil, err
	}
	if u.HasWallet() {
		if err := h.Payments.Disconnect(ctx, u.WalletID); err != nil {
			return nil, fmt.Errorf("failed to disconnect wallet: %w", err)
		}
	}
	if err := h.Users.SetWallet(ctx, u.ID, ""); err != nil {
		return nil, fmt.Errorf("failed to clear wallet id: %w", err)
	}
	return &WalletResult{HasWallet: false}, nil
}

var _ commands.Handler[ConnectWalletCommand, *WalletResult] = (*ConnectWalletHandler)(nil)
var _ commands.Handler[DisconnectWalletCommand, *WalletResult] = (*DisconnectWalletHandler)(nil)
