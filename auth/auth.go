// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidSlug        = errors.New("slug must be 2-64 lowercase letters, digits or single hyphens")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const MinPasswordLength = 8

// 2-64 chars, lowercase alnum groups joined by single hyphens
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new time-ordered row ID.
// IDs from one process sort in creation order, even within a millisecond,
// which makes them a stable tie-breaker.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}

// NewSessionToken creates a random session token (UUIDv4, 122 bits of entropy)
func NewSessionToken() string {
	return uuid.NewString()
}

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashVisitor creates a one-way hash of a visitor identity (network address) for privacy
// Includes salt to prevent rainbow table attacks
func HashVisitor(identity, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	sum := h.Sum(nil)
	// Return first 16 bytes (32 hex chars) - plenty for deduplication
	return hex.EncodeToString(sum[:16])
}

// ValidateSlug checks that a board slug is URL-safe
func ValidateSlug(slug string) error {
	if len(slug) < 2 || len(slug) > 64 || !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// NormalizeEmail lowercases and validates an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
