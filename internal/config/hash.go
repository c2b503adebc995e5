package config

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the hex BLAKE3 digest of data.
func Fingerprint(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
