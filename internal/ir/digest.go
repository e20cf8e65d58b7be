package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSignals prefixes signal digests. The version suffix leaves room for
// a different encoding later.
const DomainSignals = "shouldi/signals/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SignalsDigest returns a content hash of the signals a verdict was decided
// on. Equal signals hash equally regardless of map order, so two runs that
// reached the same verdict for the same reasons can be matched in logs.
func SignalsDigest(signals Signals) (string, error) {
	data, err := MarshalCanonical(signals)
	if err != nil {
		return "", fmt.Errorf("canonical signals: %w", err)
	}
	return hashWithDomain(DomainSignals, data), nil
}
