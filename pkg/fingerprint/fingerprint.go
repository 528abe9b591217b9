// Package fingerprint produces deterministic hashes of lead data for
// change detection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Generate creates a deterministic fingerprint for a lead's identifying
// fields. Keys are sorted so two maps with the same contents always
// hash the same regardless of insertion order.
func Generate(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(data[k])
		sb.Write(keyJSON)
		sb.WriteString(":")
		sb.Write(valJSON)
	}
	sb.WriteString("}")

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}

// HasChanged compares two fingerprints
func HasChanged(oldFingerprint, newFingerprint string) bool {
	return oldFingerprint != newFingerprint
}
