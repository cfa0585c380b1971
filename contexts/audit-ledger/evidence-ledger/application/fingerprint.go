package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint derives the dedup identity of an evidence artifact from its
// kind and payload. json.Marshal sorts map keys, so equal payloads always
// hash equal regardless of construction order.
func Fingerprint(kind string, payload map[string]any) string {
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(append([]byte(kind+"\x00"), raw...))
	return hex.EncodeToString(sum[:])
}
