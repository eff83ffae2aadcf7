// Package service provides the capability token signer.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"

	tokenDomain "github.com/maisonhub/sentinel/internal/token/domain"

	apperrors "github.com/maisonhub/sentinel/internal/errors"
)

// Signer mints capability tokens by signing a grant's canonical form.
type Signer interface {
	Sign(grant *tokenDomain.Grant) (string, error)
}

// hmacSigner implements Signer using HKDF-SHA256 for key derivation and
// HMAC-SHA256 for the signature. The token string is the hex-encoded MAC.
type hmacSigner struct {
	signingKey []byte
}

// NewHMACSigner derives the signing key from the master secret. The info
// string is versioned so the derivation can change without reusing keys.
func NewHMACSigner(masterSecret []byte) (Signer, error) {
	if len(masterSecret) == 0 {
		return nil, apperrors.New("token master secret is empty")
	}

	info := []byte("capability-token-signing-v1")
	kdf := hkdf.New(sha256.New, masterSecret, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}

	return &hmacSigner{signingKey: signingKey}, nil
}

// Sign computes HMAC-SHA256 over the grant's canonical serialization.
func (s *hmacSigner) Sign(grant *tokenDomain.Grant) (string, error) {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(canonicalizeGrant(grant))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// canonicalizeGrant converts a grant to its canonical byte representation.
// Format: subject || action || target || issued_at || expires_at.
// Variable-length fields are length-prefixed to prevent ambiguity.
func canonicalizeGrant(grant *tokenDomain.Grant) []byte {
	buf := make([]byte, 0, 256)

	buf = appendLengthPrefixed(buf, []byte(grant.SubjectID))
	buf = appendLengthPrefixed(buf, []byte(grant.Action))
	buf = appendLengthPrefixed(buf, []byte(grant.TargetID))

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(grant.IssuedAt.UnixNano()))
	buf = append(buf, timeBytes...)
	binary.BigEndian.PutUint64(timeBytes, uint64(grant.ExpiresAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}
