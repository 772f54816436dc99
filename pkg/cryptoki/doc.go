// Package cryptoki holds the foreign scalar types shared by the PKCS#11
// parameter marshaling packages: the CK_ULONG width, CK_BBOOL flags,
// mechanism identifiers and opaque object handles.
//
// # Foreign Integer Width
//
// CK_ULONG is C's unsigned long. On Unix targets (LP64 and ILP32) it is as
// wide as a pointer, so ULong is a uint. On Windows (LLP64) it is 32 bits
// wide. Every length that crosses the boundary goes through CheckedLength so
// an oversized buffer is reported as ErrLengthOverflow instead of wrapping.
//
// # Handles
//
// ObjectHandle values are back-references to objects owned by the token.
// This package never allocates, resolves or frees them.
//
// The mechanism-specific records live in the mechanism subpackage.
package cryptoki
