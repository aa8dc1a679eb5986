package hub

import "math/big"

// encodeSessionHash renders b as Minecraft's session-hash digest does:
// the byte string treated as a (non-negative, since the caller already
// masked the sign bit) big-endian integer, hex-encoded with every leading
// zero nibble stripped, "0" for an all-zero input.
func encodeSessionHash(b []byte) string {
	n := new(big.Int).SetBytes(b)
	if n.Sign() == 0 {
		return "0"
	}
	return n.Text(16)
}
