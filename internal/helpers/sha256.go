package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters kept by Fingerprint.
const fingerprintLen = 12

func SHA256(input string) string {
	return SHA256Bytes([]byte(input))
}

func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

// Fingerprint is the short script identifier written to logs in place of the script text.
func Fingerprint(script string) string {
	return SHA256(script)[:fingerprintLen]
}
