package accounts

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/flams/lore-archive/internal/config"
	"golang.org/x/crypto/scrypt"
)

// Password KDF parameters. Changing these invalidates every stored hash.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

// Account is a roster entry with its derived password hash. The hash and
// salt never leave this package.
type Account struct {
	ID           string
	Username     string
	DisplayName  string
	Salt         string
	PasswordHash []byte
}

// PublicAccount is the projection of an Account safe to hand to callers.
type PublicAccount struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Store holds the fixed account roster, built once at startup.
type Store struct {
	accounts []Account
}

// NewStore derives password hashes for the configured seeds and builds the
// roster. Errors here are fatal at startup; the roster is immutable after.
func NewStore(seeds []config.AccountSeed) (*Store, error) {
	accts := make([]Account, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		key := strings.ToLower(seed.Username)
		if seen[key] {
			return nil, fmt.Errorf("duplicate account username %q", seed.Username)
		}
		seen[key] = true

		hash, err := hashPassword(seed.Password, seed.Salt)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", seed.Username, err)
		}
		accts = append(accts, Account{
			ID:           seed.ID,
			Username:     seed.Username,
			DisplayName:  seed.DisplayName,
			Salt:         seed.Salt,
			PasswordHash: hash,
		})
	}
	return &Store{accounts: accts}, nil
}

func hashPassword(password, salt string) ([]byte, error) {
	return scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
}

// Find looks up an account by username. Input is trimmed and matching is
// case-insensitive.
func (s *Store) Find(username string) (Account, bool) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == normalized {
			return a, true
		}
	}
	return Account{}, false
}

// Verify checks a username/password pair against the roster. Unknown users
// and wrong passwords both return nil so callers cannot tell them apart.
// The hash comparison is constant time; both sides are canonical
// scryptKeyLen-byte digests, so length never branches the comparison.
func (s *Store) Verify(username, password string) *PublicAccount {
	account, ok := s.Find(username)
	if !ok {
		return nil
	}

	attempted, err := hashPassword(password, account.Salt)
	if err != nil {
		return nil
	}
	if len(attempted) != len(account.PasswordHash) {
		return nil
	}
	if subtle.ConstantTimeCompare(attempted, account.PasswordHash) != 1 {
		return nil
	}

	return &PublicAccount{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
	}
}
