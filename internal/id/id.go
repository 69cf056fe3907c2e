// Package id generates prefixed identifiers for stored records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// LetterPrefix is prepended to every letter ID.
const LetterPrefix = "ltr"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "ltr-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewLetterID returns a fresh letter ID.
func NewLetterID() (string, error) {
	return Generate(LetterPrefix)
}
