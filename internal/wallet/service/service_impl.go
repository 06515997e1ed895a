package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pavelgs/walletpay/internal/repo"
	"github.com/pavelgs/walletpay/internal/wallet/dto"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
	"github.com/pavelgs/walletpay/internal/wallet/jwt"
	"github.com/pavelgs/walletpay/internal/wallet/model"
	"github.com/pavelgs/walletpay/internal/wallet/password"
)

type authService struct {
	store  repo.Store
	hasher password.Hasher
	tokens jwt.Issuer
	v      *validator.Validate
}

func NewAuthService(store repo.Store, hasher password.Hasher, tokens jwt.Issuer, v *validator.Validate) AuthService {
	return &authService{store: store, hasher: hasher, tokens: tokens, v: v}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	// All validation, including the confirm-password match, happens before
	// hashing or any store access.
	if err := a.v.Struct(in); err != nil {
		return model.User{}, walletErrors.NewInvalidArgument(err.Error())
	}

	// Hashing is CPU-bound; do it before the transaction opens so it never
	// holds a connection.
	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, walletErrors.WrapInternal(err, "Register")
	}

	var created model.User
	err = a.store.Atomic(ctx, func(tx repo.Store) error {
		user, err := tx.CreateUser(ctx, model.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		if _, err := tx.CreateWallet(ctx, user.ID); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		if errors.Is(err, walletErrors.ErrEmailTaken) {
			return model.User{}, walletErrors.ErrEmailTaken
		}
		if walletErrors.IsInternal(err) {
			return model.User{}, err
		}
		return model.User{}, walletErrors.WrapInternal(err, "Register")
	}

	return created, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, walletErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, walletErrors.ErrNotFound) {
		// Deliberately the same failure as a wrong password so responses
		// do not reveal whether the email is registered.
		return model.TokenPair{}, walletErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, walletErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(in.Password, user.PasswordHash) {
		return model.TokenPair{}, walletErrors.ErrInvalidCredentials
	}

	access, accessExp, err := a.tokens.IssueAccess(user.ID)
	if err != nil {
		return model.TokenPair{}, walletErrors.WrapInternal(err, "Login")
	}
	refresh, refreshExp, err := a.tokens.IssueRefresh(user.ID)
	if err != nil {
		return model.TokenPair{}, walletErrors.WrapInternal(err, "Login")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    accessExp.Sub(now),
		RefreshTTL:   refreshExp.Sub(now),
		UserID:       user.ID,
	}, nil
}

func (a *authService) CurrentUser(ctx context.Context, accessToken string) (model.User, error) {
	if accessToken == "" {
		return model.User{}, walletErrors.ErrUnauthenticated
	}

	userID, err := a.tokens.Verify(accessToken, jwt.TypeAccess)
	if err != nil {
		return model.User{}, walletErrors.ErrUnauthenticated
	}

	user, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, walletErrors.ErrUnauthenticated
	}
	return user, nil
}

type walletService struct {
	wallets repo.WalletRepo
}

func NewWalletService(wallets repo.WalletRepo) WalletService {
	return &walletService{wallets: wallets}
}

func (w *walletService) WalletOf(ctx context.Context, userID uint64) (model.Wallet, error) {
	wallet, err := w.wallets.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, walletErrors.ErrNotFound) {
			return model.Wallet{}, walletErrors.ErrNotFound
		}
		return model.Wallet{}, walletErrors.WrapInternal(err, "WalletOf")
	}
	return wallet, nil
}
