package hub

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
)

// seededRand is a ChaCha8 stream seeded once from the OS CSPRNG at hub
// creation, per the "seed a userspace PRNG from a cryptographic source;
// do not re-seed" design note. It is only ever touched from the hub's
// single processing goroutine, so it needs no lock of its own.
type seededRand struct {
	src *mrand.ChaCha8
}

func newSeededRand() (*seededRand, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("seed PRNG from OS CSPRNG: %w", err)
	}
	return &seededRand{src: mrand.NewChaCha8(seed)}, nil
}

// sessionNonce draws 20 random bytes and clears the top bit of the first,
// matching the original's `bytes[0] &= 0b0111_1111` so the digest is
// always representable as a non-negative integer.
func (r *seededRand) sessionNonce() [20]byte {
	var b [20]byte
	for i := 0; i < len(b); i += 8 {
		v := r.src.Uint64()
		for j := 0; j < 8 && i+j < len(b); j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	b[0] &= 0b0111_1111
	return b
}
