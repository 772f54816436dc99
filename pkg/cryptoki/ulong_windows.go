//go:build windows

package cryptoki

// ULong mirrors CK_ULONG. Windows is LLP64, so unsigned long stays 32 bits
// even on 64-bit targets.
type ULong uint32
