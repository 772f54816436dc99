//go:build !windows

package cryptoki

// ULong mirrors CK_ULONG. C unsigned long is pointer-width on every Unix ABI
// Go supports.
type ULong uint
