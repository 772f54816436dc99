package cryptoki

import "runtime"

// ZeroizeBytes overwrites buf with zeros and keeps the store from being
// eliminated. Used for derived key material copied out of a token.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
