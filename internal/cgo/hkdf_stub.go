//go:build !cgo || windows

package cgo

import "unsafe"

// Stub implementations for non-CGO builds or Windows.

// Available reports whether the native boundary is compiled in.
const Available = false

// CryptokiVersion returns "" when the native declarations are not built.
func CryptokiVersion() string { return "" }

// Layout describes the size and field offsets of a C struct.
type Layout struct {
	Size    uintptr
	Align   uintptr
	Offsets []uintptr
}

// HKDFParamsLayout returns the zero Layout.
func HKDFParamsLayout() Layout { return Layout{} }

// HKDFView is what native code observed when it read a CK_HKDF_PARAMS.
type HKDFView struct {
	Extract  bool
	Expand   bool
	PRFHash  uint64
	SaltType uint64
	Salt     []byte
	SaltKey  uint64
	Info     []byte
}

// InspectHKDFParams reports CKR_FUNCTION_NOT_SUPPORTED.
func InspectHKDFParams(unsafe.Pointer) (HKDFView, uint64) {
	return HKDFView{}, ckrFunctionNotSupported
}

const ckrFunctionNotSupported = 0x00000054
