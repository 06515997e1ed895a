package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pavelgs/walletpay/internal/config"
	walletErrors "github.com/pavelgs/walletpay/internal/wallet/errors"
)

type hmacIssuer struct {
	secret     []byte
	method     jwt.SigningMethod
	alg        string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewHMACIssuer builds an Issuer signing with the shared secret and the
// HS-family algorithm named in the config.
func NewHMACIssuer(cfg *config.Config) (Issuer, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.JWTAlgorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not HMAC-based", cfg.JWTAlgorithm)
	}
	return &hmacIssuer{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		alg:        cfg.JWTAlgorithm,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

func (i *hmacIssuer) IssueAccess(userID uint64) (string, time.Time, error) {
	return i.issue(userID, TypeAccess, i.accessTTL)
}

func (i *hmacIssuer) IssueRefresh(userID uint64) (string, time.Time, error) {
	return i.issue(userID, TypeRefresh, i.refreshTTL)
}

func (i *hmacIssuer) issue(userID uint64, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		TokenType: string(typ),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, walletErrors.WrapInternal(err, "sign token")
	}
	return signed, exp, nil
}

func (i *hmacIssuer) Verify(raw string, want TokenType) (uint64, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.alg}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, walletErrors.ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, walletErrors.ErrTokenExpired
		default:
			return 0, walletErrors.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return 0, walletErrors.ErrTokenSignature
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, walletErrors.ErrTokenMalformed
	}
	if claims.TokenType != string(want) {
		return 0, walletErrors.ErrTokenWrongType
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, walletErrors.ErrTokenMalformed
	}
	return userID, nil
}
