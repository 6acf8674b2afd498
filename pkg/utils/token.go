// Package utils holds seat-token helpers shared by the hub and handlers.
package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("utils: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// SameToken compares two secrets in constant time. Empty tokens never match.
func SameToken(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
