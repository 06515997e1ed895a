package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pavelgs/walletpay/internal/repo"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
	"github.com/pavelgs/walletpay/internal/wallet/model"
)

const uniqueViolation = "23505"

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	res := s.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		if isDuplicate(err) {
			return model.User{}, walletErrors.ErrEmailTaken
		}
		return model.User{}, walletErrors.WrapInternal(err, "CreateUser")
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	res := s.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, walletErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, walletErrors.WrapInternal(err, "GetUserByID")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := s.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, walletErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, walletErrors.WrapInternal(err, "GetUserByEmail")
	}
	return u, nil
}

func (s *Store) CreateWallet(ctx context.Context, userID uint64) (model.Wallet, error) {
	wallet := model.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: decimal.Zero,
	}
	res := s.db.WithContext(ctx).Create(&wallet)
	if err := res.Error; err != nil {
		return model.Wallet{}, walletErrors.WrapInternal(err, "CreateWallet")
	}
	return wallet, nil
}

func (s *Store) GetWalletByUserID(ctx context.Context, userID uint64) (model.Wallet, error) {
	var w model.Wallet
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&w)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Wallet{}, walletErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Wallet{}, walletErrors.WrapInternal(err, "GetWalletByUserID")
	}
	return w, nil
}

func (s *Store) Atomic(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// isDuplicate recognizes a unique-constraint violation from the postgres
// driver, or from gorm's dialect-independent translation (sqlite in tests).
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
