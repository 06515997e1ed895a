package repo

import (
	"context"

	"github.com/pavelgs/walletpay/internal/wallet/model"
)

type UserRepo interface {
	// CreateUser persists a new user. A uniqueness-constraint violation on
	// the email surfaces as ErrEmailTaken; there is deliberately no
	// existence pre-check, the constraint is the race-free source of truth.
	CreateUser(ctx context.Context, u model.User) (model.User, error)

	GetUserByID(ctx context.Context, id uint64) (model.User, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type WalletRepo interface {
	// CreateWallet provisions a zero-balance wallet with a fresh opaque id
	// for the given user.
	CreateWallet(ctx context.Context, userID uint64) (model.Wallet, error)

	GetWalletByUserID(ctx context.Context, userID uint64) (model.Wallet, error)
}

// Store is the persistence surface workflows talk to. Atomic runs fn against
// a Store bound to a single database transaction: every write inside either
// commits as one unit or rolls back on the first error.
type Store interface {
	UserRepo
	WalletRepo

	Atomic(ctx context.Context, fn func(tx Store) error) error
}
