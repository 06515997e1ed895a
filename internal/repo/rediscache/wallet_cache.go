package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pavelgs/walletpay/internal/repo"
	"github.com/pavelgs/walletpay/internal/wallet/model"
)

// WalletCache is a read-through cache in front of a WalletRepo. Wallet rows
// are create-only in this service, so a TTL-bounded cache can never serve a
// stale balance mutation; the TTL only bounds memory. Cache failures degrade
// to the underlying store.
type WalletCache struct {
	inner  repo.WalletRepo
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewWalletCache(inner repo.WalletRepo, client *redis.Client, ttl time.Duration, log *zap.Logger) *WalletCache {
	return &WalletCache{inner: inner, client: client, ttl: ttl, log: log}
}

func walletKey(userID uint64) string {
	return fmt.Sprintf("wallet:user:%d", userID)
}

func (c *WalletCache) CreateWallet(ctx context.Context, userID uint64) (model.Wallet, error) {
	return c.inner.CreateWallet(ctx, userID)
}

func (c *WalletCache) GetWalletByUserID(ctx context.Context, userID uint64) (model.Wallet, error) {
	key := walletKey(userID)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var w model.Wallet
		if err := json.Unmarshal([]byte(raw), &w); err == nil {
			return w, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("wallet cache read failed", zap.Error(err))
	}

	wallet, err := c.inner.GetWalletByUserID(ctx, userID)
	if err != nil {
		return model.Wallet{}, err
	}

	if b, err := json.Marshal(wallet); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("wallet cache write failed", zap.Error(err))
		}
	}
	return wallet, nil
}
