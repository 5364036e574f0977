package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

// ==================== UUID & TOKEN ====================

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// GeneratePaymentToken returns 32 random bytes hex encoded.
func GeneratePaymentToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ==================== BOOKING REFERENCE ====================

// GenerateBookingRef returns a short human-friendly reference, e.g. BK-3HkQ9vT2aZ.
func GenerateBookingRef() string {
	return "BK-" + shortuuid.New()[:10]
}
