package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength     = 24
	apiKeyLength = 32
	charset      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	interactionIDPrefix = "int_"

	// APIKeyPrefix marks partner-issued API keys.
	APIKeyPrefix = "tm_"

	// KeyLookupLength is the number of characters after APIKeyPrefix that are
	// stored in clear text to locate a partner before the bcrypt comparison.
	KeyLookupLength = 8
)

var (
	interactionIDPattern = regexp.MustCompile(`^int_[a-zA-Z0-9]{24}$`)
	apiKeyPattern        = regexp.MustCompile(`^tm_[a-zA-Z0-9]{32}$`)
	partnerIDPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)
)

// NewInteractionID generates a new interaction ID with the "int_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewInteractionID() string {
	return interactionIDPrefix + randomAlphanumeric(idLength)
}

// NewAPIKey generates a partner API key: "tm_" followed by 32 random
// alphanumeric characters.
func NewAPIKey() string {
	return APIKeyPrefix + randomAlphanumeric(apiKeyLength)
}

// KeyLookup returns the clear-text lookup segment of a partner API key,
// or an empty string if key is not a well-formed partner key.
func KeyLookup(key string) string {
	if !ValidateAPIKey(key) {
		return ""
	}
	return key[len(APIKeyPrefix) : len(APIKeyPrefix)+KeyLookupLength]
}

// ValidateInteractionID reports whether id matches "int_" + 24 alphanumerics.
func ValidateInteractionID(id string) bool {
	return interactionIDPattern.MatchString(id)
}

// ValidateAPIKey reports whether key matches "tm_" + 32 alphanumerics.
func ValidateAPIKey(key string) bool {
	return apiKeyPattern.MatchString(key)
}

// ValidatePartnerID reports whether id is a usable partner identifier:
// lowercase alphanumerics, underscores, and dashes, 2 to 64 characters.
func ValidatePartnerID(id string) bool {
	return partnerIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
