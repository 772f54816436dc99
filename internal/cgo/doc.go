// Package cgo contains all CGO code of the module.
//
// # Design Principles
//
//  1. Isolation: ALL CGO code lives in this package. No other package should
//     import "C". The internalcheck tests enforce this.
//
//  2. Minimal Surface: only the record layouts and the checks a token applies
//     to them are declared here. The PKCS#11 entry points themselves belong to
//     the token library and are not wrapped.
//
//  3. Raw Codes: functions return raw CK_RV values as uint64. The cryptoki
//     package maps them to Go errors, which keeps this package free of
//     imports from the public tree.
//
//  4. Borrowed Memory: records passed in are Go memory. They may hold Go
//     pointers only if the caller pinned them with runtime.Pinner first.
//
// # Platforms
//
// Windows cryptoki headers pack every struct to one byte. Go struct layout
// cannot express that, so the native path is built for cgo on non-Windows
// targets only. Other builds get the stub in hkdf_stub.go.
package cgo
