package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// InvitationTokenBytes yields a 64-character hex token.
const InvitationTokenBytes = 32

var invitationTokenRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// GenerateSecureToken returns length random bytes, hex encoded.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the one-way digest stored in place of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func IsValidInvitationToken(token string) bool {
	return invitationTokenRegex.MatchString(token)
}

// BuildInvitationLink points at the client redemption page.
func BuildInvitationLink(frontendURL, token string) string {
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	frontendURL = strings.TrimRight(frontendURL, "/")
	return fmt.Sprintf("%s/admin/accept-invitation?token=%s", frontendURL, token)
}
