// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
	ErrInvalidToken      = errors.New("invalid token format")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateVoterToken creates a random secure session token for a voter
func GenerateVoterToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate voter token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateNonce creates the rotation nonce embedded in a TPS
// credential. Rotating a credential means storing a fresh nonce, which
// invalidates every previously issued token for that voter.
func GenerateNonce() (string, error) {
	return GenerateID(8)
}

// Credential is the decoded content of a TPS QR token.
type Credential struct {
	VoterID    string
	ElectionID string
	Nonce      string
	ExpiresAt  time.Time
}

// GenerateCredential signs a QR credential for one voter. The token is
// self-describing: voter, election, rotation nonce and expiry, bound
// together with HMAC-SHA256 so nothing in it can be altered.
func GenerateCredential(c Credential, salt string) string {
	payload := strings.Join([]string{
		c.VoterID, c.ElectionID, c.Nonce,
		strconv.FormatInt(c.ExpiresAt.Unix(), 10),
	}, ".")
	return payload + "." + sign(payload, salt)
}

// ParseCredential verifies and decodes a QR token. Tampered or
// malformed tokens fail with ErrInvalidCredential; a valid signature
// past its expiry fails with ErrExpiredCredential. The rotation nonce
// still has to be checked against the stored current nonce by the
// caller.
func ParseCredential(token, salt string) (Credential, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 {
		return Credential{}, ErrInvalidCredential
	}
	payload := strings.Join(parts[:4], ".")
	if !hmac.Equal([]byte(parts[4]), []byte(sign(payload, salt))) {
		return Credential{}, ErrInvalidCredential
	}
	exp, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Credential{}, ErrInvalidCredential
	}
	c := Credential{
		VoterID:    parts[0],
		ElectionID: parts[1],
		Nonce:      parts[2],
		ExpiresAt:  time.Unix(exp, 0),
	}
	if time.Now().After(c.ExpiresAt) {
		return c, ErrExpiredCredential
	}
	return c, nil
}

func sign(payload, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(payload))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
