package service

import (
	"context"

	"github.com/pavelgs/walletpay/internal/wallet/dto"
	"github.com/pavelgs/walletpay/internal/wallet/model"
)

// AuthService covers the registration and session workflows.
type AuthService interface {
	// Register validates the input, hashes the password, then creates the
	// user and their wallet inside one transaction. It returns the created
	// user; session tokens are a separate Login step.
	Register(ctx context.Context, in dto.RegisterDTO) (model.User, error)

	// Login verifies credentials and mints the access/refresh token pair.
	// Unknown email and wrong password fail identically.
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)

	// CurrentUser resolves an access token to its user. Any missing,
	// malformed, expired, wrong-typed or orphaned token yields
	// ErrUnauthenticated.
	CurrentUser(ctx context.Context, accessToken string) (model.User, error)
}

// WalletService is the read surface over provisioned wallets.
type WalletService interface {
	WalletOf(ctx context.Context, userID uint64) (model.Wallet, error)
}
