package connector

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random hex id, prefixed with prefix and an underscore when
// prefix is not empty.
func NewID(prefix string) string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// NewEdgeID returns a fresh edge id.
func NewEdgeID() string { return NewID("e") }
