package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<kind>:<sha256 of the JSON encoding of parts>".
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// keyType labels cache events with the key's kind prefix.
func keyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
