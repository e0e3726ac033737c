package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TTL is how long an issued session token stays valid.
const TTL = 30 * 24 * time.Hour

const (
	secretEnvVar      = "SESSION_SECRET"
	insecureDevSecret = "dev-insecure-session-secret"
)

var (
	keyOnce    sync.Once
	signingKey []byte
)

// Key returns the process-wide signing key, resolving SESSION_SECRET on
// first use. Initialization runs at most once even under concurrent first
// use; the key is read-only afterwards.
func Key() []byte {
	keyOnce.Do(func() {
		secret := os.Getenv(secretEnvVar)
		if secret == "" {
			log.Warn().Msgf("%s is not set, falling back to an insecure development secret", secretEnvVar)
			secret = insecureDevSecret
		}
		signingKey = []byte(secret)
	})
	return signingKey
}

// User is the identity carried by a valid session token.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type payload struct {
	Sub         string `json:"sub"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Exp         int64  `json:"exp"`
}

// Codec issues and validates signed session tokens. A token is the
// base64url-encoded JSON payload and its HMAC-SHA256 signature, joined by a
// single dot; neither segment carries padding. Tokens are self-verifying, so
// no server-side session store exists and a single token cannot be revoked
// before it expires.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec returns a codec signing with the given key. A nil key uses the
// process-wide key from Key().
func NewCodec(key []byte) *Codec {
	if key == nil {
		key = Key()
	}
	return &Codec{key: key, now: time.Now}
}

// Issue serializes and signs a session token for the given user, valid for
// TTL from now.
func (c *Codec) Issue(user User) (string, error) {
	p := payload{
		Sub:         user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Exp:         c.now().Add(TTL).Unix(),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + c.sign(encoded), nil
}

func (c *Codec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Read validates a presented token and returns the identity it carries.
// The signature is verified over the encoded payload bytes before anything
// is decoded. Tampered, malformed and expired tokens all come back nil;
// Read never fails hard on a garbled cookie.
func (c *Codec) Read(token string) *User {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(parts[0]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	if p.Exp < c.now().Unix() {
		return nil
	}

	return &User{ID: p.Sub, Username: p.Username, DisplayName: p.DisplayName}
}
