package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/allisson/go-pwdhash"
)

// RunCreateAdminKey generates a random admin API key and prints both the
// plain key and its argon2id hash. The hash goes into ADMIN_API_KEY_HASH;
// the plain key is shown once and never stored.
func RunCreateAdminKey(writer io.Writer) error {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("failed to generate random key: %w", err)
	}
	plainKey := base64.URLEncoding.EncodeToString(randomBytes)

	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return fmt.Errorf("failed to create hasher: %w", err)
	}

	hash, err := hasher.Hash([]byte(plainKey))
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Fprintln(writer, "Admin API key (store it now, it will not be shown again):")
	fmt.Fprintln(writer, plainKey)
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "ADMIN_API_KEY_HASH value:")
	fmt.Fprintln(writer, hash)

	return nil
}
