// Package cache provides the fingerprint generator and the Redis-backed
// response cache used to memoize briefing and summary results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cache key namespaces. Each namespace is invalidated independently, so
// clearing briefings never touches summaries.
const (
	NamespaceBriefing     = "briefing"
	NamespaceBriefingV2   = "briefing_v2"
	NamespaceSummary      = "summary"
	NamespaceBatchSummary = "batch_summary"
)

// Fingerprint derives a deterministic cache key from a prefix and a
// JSON-serializable payload. Payloads that are structurally equal produce the
// same key regardless of map key order. Callers must not include volatile
// fields such as timestamps in the payload.
func Fingerprint(prefix string, payload any) string {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		// Marshal failures are limited to unsupported types; fall back to the
		// Go-syntax representation so the key is still deterministic.
		canonical = []byte(fmt.Sprintf("%#v", payload))
	}

	sum := sha256.Sum256(canonical)
	return prefix + ":" + hex.EncodeToString(sum[:])[:16]
}

// canonicalJSON serializes payload with recursively sorted object keys.
// encoding/json sorts map keys, so round-tripping through an untyped value
// normalizes structs and maps alike while preserving array order.
func canonicalJSON(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}

	return json.Marshal(normalized)
}
