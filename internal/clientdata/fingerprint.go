package clientdata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint computes a stable SHA-256 hex digest over the given parts.
// Each part is serialized as canonical JSON (map keys sorted), so two
// requests that differ only in JSON key ordering produce the same digest.
// The digest keys the estimator_results cache and job deduplication.
func Fingerprint(parts ...interface{}) (string, error) {
	h := sha256.New()

	for i, part := range parts {
		canonical, err := canonicalJSON(part)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize part %d: %w", i, err)
		}
		h.Write(canonical)
		h.Write([]byte{0}) // Separator so ("ab","c") != ("a","bc")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalJSON marshals a value, round-trips it through interface{} and
// marshals again. encoding/json sorts map keys, which makes the second
// marshal deterministic regardless of struct field order or input ordering.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
