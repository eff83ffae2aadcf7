package commands

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/allisson/go-pwdhash"
	"github.com/stretchr/testify/require"
)

func TestRunCreateAdminKey(t *testing.T) {
	var out bytes.Buffer
	err := RunCreateAdminKey(&out)
	require.NoError(t, err)

	// Extract the plain key and the hash from the output.
	var lines []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 4)

	plainKey := lines[1]
	hash := lines[3]
	require.NotEmpty(t, plainKey)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// The printed hash must verify against the printed key.
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	require.NoError(t, err)

	ok, err := hasher.Verify([]byte(plainKey), hash)
	require.NoError(t, err)
	require.True(t, ok)
}
