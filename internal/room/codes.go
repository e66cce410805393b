package room

import (
	"crypto/rand"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// NewCode returns a 6-character upper-case base-36 room code. Enough
// entropy for human-shareable casual rooms; collisions are handled by
// the create retry, not by the generator.
func NewCode() string {
	b := make([]byte, codeLength)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
