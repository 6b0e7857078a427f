package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	credentialMin = 100
	credentialMax = 999
)

// CredentialGenerator produces a fresh credential for a verified account.
type CredentialGenerator func() (string, error)

// PrefixedCredentials returns a generator of "<prefix><100..999>" credentials drawn
// uniformly from crypto/rand.
func PrefixedCredentials(prefix string) CredentialGenerator {
	span := big.NewInt(credentialMax - credentialMin + 1)
	return func() (string, error) {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("verification: random credential: %w", err)
		}
		return fmt.Sprintf("%s%d", prefix, n.Int64()+credentialMin), nil
	}
}
