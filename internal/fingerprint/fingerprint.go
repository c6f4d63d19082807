// Package fingerprint derives the opaque job identity for a credential pair.
//
// A fingerprint is a keyed BLAKE2b-256 digest over the length-prefixed
// identity and secret, hex encoded. Length prefixes make the encoding
// injective, so ("ab", "c") and ("a", "bc") never hash the same input.
// The fingerprint is the only form in which a credential pair is ever stored
// or reported.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Size is the length in characters of every fingerprint.
const Size = blake2b.Size256 * 2

// MaxKeySize is the longest key BLAKE2b accepts.
const MaxKeySize = 64

// Generator computes fingerprints. The zero value is not usable; use New.
type Generator struct {
	key []byte
}

// New returns a Generator keyed with key. An empty key is allowed and yields
// a plain (unkeyed) hash; keys longer than MaxKeySize are rejected.
func New(key []byte) (*Generator, error) {
	if len(key) > MaxKeySize {
		return nil, fmt.Errorf("fingerprint key is %d bytes, at most %d allowed", len(key), MaxKeySize)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Generator{key: k}, nil
}

// Fingerprint returns the fingerprint of the (identity, secret) pair.
func (g *Generator) Fingerprint(identity, secret string) string {
	h := g.newHash()
	writeField(h, identity)
	writeField(h, secret)
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Generator) newHash() hash.Hash {
	h, err := blake2b.New256(g.key)
	if err != nil {
		// New already bounds the key length, the only error New256 reports.
		panic(fmt.Sprintf("fingerprint: %v", err))
	}
	return h
}

func writeField(h hash.Hash, field string) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(field)))
	h.Write(prefix[:])
	h.Write([]byte(field))
}
