package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access from refresh tokens. Both share the signing
// key and encoding, so verification must check the type explicitly: a token
// of the wrong type is invalid no matter how fresh it is.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// Issuer mints and verifies the two bearer tokens of a session.
type Issuer interface {
	IssueAccess(userID uint64) (token string, exp time.Time, err error)
	IssueRefresh(userID uint64) (token string, exp time.Time, err error)
	// Verify checks signature, expiry and type, in that order of trust:
	// no claim is read before the signature holds. On success it returns
	// the subject user id. Failures are ErrTokenSignature, ErrTokenExpired,
	// ErrTokenMalformed or ErrTokenWrongType.
	Verify(raw string, want TokenType) (userID uint64, err error)
}
