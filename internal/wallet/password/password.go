package password

import "github.com/alexedwards/argon2id"

// Hasher abstracts the password hashing algorithm so workflows and tests do
// not depend on argon2id directly.
type Hasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. A malformed hash is simply
	// a non-match, never an error.
	Verify(plain, hash string) bool
}

type Argon2Hasher struct {
	params *argon2id.Params
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{params: argon2id.DefaultParams}
}

func (h *Argon2Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, h.params)
}

func (h *Argon2Hasher) Verify(plain, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(plain, hash)
	if err != nil {
		return false
	}
	return match
}
