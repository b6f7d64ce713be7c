package ballot

import (
	"crypto/rand"
	"encoding/hex"
)

// Credential is the tagged variant over the two coexisting credential
// schemes. Both share the same submission workflow; only the eligibility
// lookup and the consumption update differ.
type Credential interface {
	isCredential()
}

// TokenCredential is a facility's one-time voting token.
type TokenCredential struct {
	Token string
}

func (TokenCredential) isCredential() {}

// EmailCredential is a confirmed newsletter subscription's email address.
type EmailCredential struct {
	Email string
}

func (EmailCredential) isCredential() {}

// NewSecret returns 32 random bytes hex encoded. Used for voting tokens,
// confirmation tokens, and vote-session ids.
func NewSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
