package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pavelgs/walletpay/internal/config"
	"github.com/pavelgs/walletpay/internal/repo"
	"github.com/pavelgs/walletpay/internal/wallet/dto"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
	"github.com/pavelgs/walletpay/internal/wallet/jwt"
	"github.com/pavelgs/walletpay/internal/wallet/model"
	"github.com/pavelgs/walletpay/internal/wallet/password"
)

// storeStub keeps users and wallets in maps. Atomic snapshots both maps and
// restores them when fn fails, mirroring transaction rollback.
type storeStub struct {
	users      map[uint64]model.User
	wallets    map[uint64]model.Wallet
	nextUserID uint64

	failWallet bool
}

func newStoreStub() *storeStub {
	return &storeStub{users: make(map[uint64]model.User), wallets: make(map[uint64]model.Wallet)}
}

func (s *storeStub) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, walletErrors.ErrEmailTaken
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	s.users[u.ID] = u
	return u, nil
}

func (s *storeStub) GetUserByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, walletErrors.ErrNotFound
	}
	return u, nil
}

func (s *storeStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, walletErrors.ErrNotFound
}

func (s *storeStub) CreateWallet(ctx context.Context, userID uint64) (model.Wallet, error) {
	if s.failWallet {
		return model.Wallet{}, walletErrors.WrapInternal(errors.New("disk full"), "CreateWallet")
	}
	w := model.Wallet{ID: uuid.New(), UserID: userID, Balance: decimal.Zero}
	s.wallets[userID] = w
	return w, nil
}

func (s *storeStub) GetWalletByUserID(ctx context.Context, userID uint64) (model.Wallet, error) {
	w, ok := s.wallets[userID]
	if !ok {
		return model.Wallet{}, walletErrors.ErrNotFound
	}
	return w, nil
}

func (s *storeStub) Atomic(ctx context.Context, fn func(tx repo.Store) error) error {
	usersBefore := make(map[uint64]model.User, len(s.users))
	for k, v := range s.users {
		usersBefore[k] = v
	}
	walletsBefore := make(map[uint64]model.Wallet, len(s.wallets))
	for k, v := range s.wallets {
		walletsBefore[k] = v
	}
	idBefore := s.nextUserID

	if err := fn(s); err != nil {
		s.users = usersBefore
		s.wallets = walletsBefore
		s.nextUserID = idBefore
		return err
	}
	return nil
}

func newAuth(t *testing.T) (AuthService, *storeStub, jwt.Issuer) {
	t.Helper()
	store := newStoreStub()
	issuer, err := jwt.NewHMACIssuer(&config.Config{
		JWTSecret:       "test-secret",
		JWTAlgorithm:    "HS256",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return NewAuthService(store, password.NewArgon2Hasher(), issuer, validator.New()), store, issuer
}

func validRegister() dto.RegisterDTO {
	return dto.RegisterDTO{
		Name:            "Alice User",
		Email:           "a@x.com",
		Password:        "pass1234",
		ConfirmPassword: "pass1234",
	}
}

func TestAuthService_RegisterProvisionsWallet(t *testing.T) {
	svc, store, _ := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "Alice User", user.Name)
	require.NotEqual(t, "pass1234", user.PasswordHash)

	wallet, err := store.GetWalletByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, wallet.UserID)
	require.True(t, wallet.Balance.IsZero())
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, store, _ := newAuth(t)
	ctx := context.Background()

	cases := map[string]func(*dto.RegisterDTO){
		"short name":       func(d *dto.RegisterDTO) { d.Name = "Al" },
		"long name":        func(d *dto.RegisterDTO) { d.Name = strings.Repeat("a", 51) },
		"bad email":        func(d *dto.RegisterDTO) { d.Email = "not-an-email" },
		"short password":   func(d *dto.RegisterDTO) { d.Password, d.ConfirmPassword = "pw", "pw" },
		"confirm mismatch": func(d *dto.RegisterDTO) { d.ConfirmPassword = "different1" },
		"missing confirm":  func(d *dto.RegisterDTO) { d.ConfirmPassword = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRegister()
			mutate(&in)
			_, err := svc.Register(ctx, in)
			require.True(t, walletErrors.IsInvalidArgument(err), "got %v", err)
		})
	}

	// Nothing may have reached the store.
	require.Empty(t, store.users)
	require.Empty(t, store.wallets)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, store, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	second := validRegister()
	second.Name = "Other Person"
	_, err = svc.Register(ctx, second)
	require.True(t, walletErrors.IsEmailTaken(err), "got %v", err)
	require.Len(t, store.users, 1)
}

func TestAuthService_RegisterWalletFailureRollsBack(t *testing.T) {
	svc, store, _ := newAuth(t)
	ctx := context.Background()
	store.failWallet = true

	_, err := svc.Register(ctx, validRegister())
	require.Error(t, err)
	require.True(t, walletErrors.IsInternal(err), "got %v", err)

	// A user must never exist without a wallet.
	_, err = store.GetUserByEmail(ctx, "a@x.com")
	require.True(t, walletErrors.IsNotFound(err), "user must be rolled back, got %v", err)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, issuer := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "pass1234"})
	require.NoError(t, err)
	require.Equal(t, user.ID, pair.UserID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Both tokens decode to the same subject.
	accessSub, err := issuer.Verify(pair.AccessToken, jwt.TypeAccess)
	require.NoError(t, err)
	refreshSub, err := issuer.Verify(pair.RefreshToken, jwt.TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, accessSub, refreshSub)
	require.Equal(t, user.ID, accessSub)
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	svc, _, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	_, wrongPwd := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "nope5678"})
	_, unknown := svc.Login(ctx, dto.LoginDTO{Email: "ghost@x.com", Password: "pass1234"})

	require.ErrorIs(t, wrongPwd, walletErrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, walletErrors.ErrInvalidCredentials)
}

func TestAuthService_CurrentUser(t *testing.T) {
	svc, _, issuer := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "pass1234"})
	require.NoError(t, err)

	got, err := svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, user.Name, got.Name)

	// Missing token.
	_, err = svc.CurrentUser(ctx, "")
	require.ErrorIs(t, err, walletErrors.ErrUnauthenticated)

	// Refresh token where an access token is required.
	_, err = svc.CurrentUser(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, walletErrors.ErrUnauthenticated)

	// Token whose subject no longer exists.
	orphan, _, err := issuer.IssueAccess(4242)
	require.NoError(t, err)
	_, err = svc.CurrentUser(ctx, orphan)
	require.ErrorIs(t, err, walletErrors.ErrUnauthenticated)
}

func TestWalletService_WalletOf(t *testing.T) {
	authSvc, store, _ := newAuth(t)
	walletSvc := NewWalletService(store)
	ctx := context.Background()

	user, err := authSvc.Register(ctx, validRegister())
	require.NoError(t, err)

	wallet, err := walletSvc.WalletOf(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, wallet.UserID)
	require.True(t, wallet.Balance.IsZero())

	_, err = walletSvc.WalletOf(ctx, 999)
	require.True(t, walletErrors.IsNotFound(err))
}
