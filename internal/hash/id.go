// Package hash produces the 64-bit keys the name-interning tables index
// on. Keys are not part of the wire format; equal strings must map to
// equal keys within one session, nothing more, so hash collisions are
// legal and resolved by the caller with exact comparison.
package hash

import "github.com/cespare/xxhash/v2"

// NameKey returns the interning key for name.
func NameKey(name string) uint64 {
	return xxhash.Sum64String(name)
}
