// Package mechanism marshals HKDF mechanism parameters into the fixed
// CK_HKDF_PARAMS record consumed by a PKCS#11 token, and reads them back.
//
// # Building
//
// NewHKDFParams takes a tagged Salt (SaltNull, SaltData or SaltKey) and the
// info buffer and produces a record whose discriminant and payload fields
// always agree:
//
//	params, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256,
//	    mechanism.SaltData(salt), info)
//	if err != nil {
//	    return err // wraps cryptoki.ErrLengthOverflow
//	}
//	mech := mechanism.NewHKDFDerive(params)
//
// The record borrows salt and info. Nothing is copied, so the buffers must
// stay unmodified while a token may read them.
//
// # Reading
//
// The accessors on HKDFParams rebuild the tagged view from the record. For a
// record that came from native code, wrap it with TrustHKDFRecord; that is
// the single place where pointer validity is assumed rather than checked.
// HKDFRecord.Validate rejects everything that can be detected without
// dereferencing the pointers. A record with an unknown salt discriminant
// makes Salt panic.
//
// # Passing to C
//
// The record holds Go pointers, so cgo requires the buffers to be pinned:
//
//	var pinner runtime.Pinner
//	params.Pin(&pinner)
//	defer pinner.Unpin()
//	ptr, size := mech.Parameter()
package mechanism
