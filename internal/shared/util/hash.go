package util

import (
	"crypto/sha256"
	"fmt"
)

// HashUserKey maps a user ID (which may contain ':' or other unsafe runes)
// to a stable filesystem- and S3-safe identifier.
func HashUserKey(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
