//go:build cgo && !windows

package cgo

/*
#include <stddef.h>

typedef unsigned char CK_BYTE;
typedef CK_BYTE CK_BBOOL;
typedef unsigned long CK_ULONG;
typedef CK_ULONG CK_RV;
typedef CK_ULONG CK_MECHANISM_TYPE;
typedef CK_ULONG CK_OBJECT_HANDLE;
typedef CK_BYTE *CK_BYTE_PTR;

#define CKR_OK                      0x00000000UL
#define CKR_ARGUMENTS_BAD           0x00000007UL
#define CKR_MECHANISM_PARAM_INVALID 0x00000071UL

#define CK_INVALID_HANDLE  0UL
#define CKF_HKDF_SALT_NULL 0x00000001UL
#define CKF_HKDF_SALT_DATA 0x00000002UL
#define CKF_HKDF_SALT_KEY  0x00000004UL

typedef struct CK_HKDF_PARAMS {
	CK_BBOOL          bExtract;
	CK_BBOOL          bExpand;
	CK_MECHANISM_TYPE prfHashMechanism;
	CK_ULONG          ulSaltType;
	CK_BYTE_PTR       pSalt;
	CK_ULONG          ulSaltLen;
	CK_OBJECT_HANDLE  hSaltKey;
	CK_BYTE_PTR       pInfo;
	CK_ULONG          ulInfoLen;
} CK_HKDF_PARAMS;

// Applies the parameter checks a token performs before C_DeriveKey.
static CK_RV check_hkdf_params(const CK_HKDF_PARAMS *p) {
	if (p == NULL) {
		return CKR_ARGUMENTS_BAD;
	}
	switch (p->ulSaltType) {
	case CKF_HKDF_SALT_NULL:
		if (p->pSalt != NULL || p->ulSaltLen != 0 || p->hSaltKey != CK_INVALID_HANDLE) {
			return CKR_MECHANISM_PARAM_INVALID;
		}
		break;
	case CKF_HKDF_SALT_DATA:
		if (p->pSalt == NULL || p->hSaltKey != CK_INVALID_HANDLE) {
			return CKR_MECHANISM_PARAM_INVALID;
		}
		break;
	case CKF_HKDF_SALT_KEY:
		if (p->pSalt != NULL || p->ulSaltLen != 0 || p->hSaltKey == CK_INVALID_HANDLE) {
			return CKR_MECHANISM_PARAM_INVALID;
		}
		break;
	default:
		return CKR_MECHANISM_PARAM_INVALID;
	}
	if (p->pInfo == NULL) {
		return CKR_MECHANISM_PARAM_INVALID;
	}
	return CKR_OK;
}
*/
import "C"

import (
	"unsafe"
)

// Available reports whether the native boundary is compiled in.
const Available = true

// CryptokiVersion returns the PKCS#11 header version of the declarations above.
func CryptokiVersion() string {
	return "3.0"
}

// Layout describes the size and field offsets of a C struct.
type Layout struct {
	Size    uintptr
	Align   uintptr
	Offsets []uintptr
}

// HKDFParamsLayout reports the layout of CK_HKDF_PARAMS in declaration order.
func HKDFParamsLayout() Layout {
	var p C.CK_HKDF_PARAMS
	return Layout{
		Size:  unsafe.Sizeof(p),
		Align: unsafe.Alignof(p),
		Offsets: []uintptr{
			unsafe.Offsetof(p.bExtract),
			unsafe.Offsetof(p.bExpand),
			unsafe.Offsetof(p.prfHashMechanism),
			unsafe.Offsetof(p.ulSaltType),
			unsafe.Offsetof(p.pSalt),
			unsafe.Offsetof(p.ulSaltLen),
			unsafe.Offsetof(p.hSaltKey),
			unsafe.Offsetof(p.pInfo),
			unsafe.Offsetof(p.ulInfoLen),
		},
	}
}

// HKDFView is what native code observed when it read a CK_HKDF_PARAMS.
// Salt and Info are copies.
type HKDFView struct {
	Extract  bool
	Expand   bool
	PRFHash  uint64
	SaltType uint64
	Salt     []byte
	SaltKey  uint64
	Info     []byte
}

// InspectHKDFParams runs the token-side parameter check on the record at p
// and, when it passes, copies out every field as C sees it. p must point to
// a CK_HKDF_PARAMS-shaped record whose buffers are pinned.
func InspectHKDFParams(p unsafe.Pointer) (HKDFView, uint64) {
	params := (*C.CK_HKDF_PARAMS)(p)
	if rv := C.check_hkdf_params(params); rv != C.CKR_OK {
		return HKDFView{}, uint64(rv)
	}

	view := HKDFView{
		Extract:  params.bExtract != 0,
		Expand:   params.bExpand != 0,
		PRFHash:  uint64(params.prfHashMechanism),
		SaltType: uint64(params.ulSaltType),
		SaltKey:  uint64(params.hSaltKey),
	}
	if params.ulSaltType == C.CKF_HKDF_SALT_DATA {
		view.Salt = copyOut(params.pSalt, params.ulSaltLen)
	}
	view.Info = copyOut(params.pInfo, params.ulInfoLen)
	return view, uint64(C.CKR_OK)
}

func copyOut(data C.CK_BYTE_PTR, size C.CK_ULONG) []byte {
	out := make([]byte, int(size))
	if size > 0 {
		copy(out, unsafe.Slice((*byte)(unsafe.Pointer(data)), int(size)))
	}
	return out
}
