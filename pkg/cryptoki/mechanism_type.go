package cryptoki

import "fmt"

// MechanismType mirrors CK_MECHANISM_TYPE.
type MechanismType ULong

// Digest mechanisms usable as the PRF hash of an HKDF operation.
const (
	MechanismSHA1     MechanismType = 0x00000220
	MechanismSHA256   MechanismType = 0x00000250
	MechanismSHA224   MechanismType = 0x00000255
	MechanismSHA384   MechanismType = 0x00000260
	MechanismSHA512   MechanismType = 0x00000270
	MechanismSHA3_256 MechanismType = 0x000002b0
	MechanismSHA3_224 MechanismType = 0x000002b5
	MechanismSHA3_384 MechanismType = 0x000002c0
	MechanismSHA3_512 MechanismType = 0x000002d0
)

// HKDF mechanisms from PKCS#11 v3.0 section 2.43.
const (
	MechanismHKDFDerive MechanismType = 0x0000402a
	MechanismHKDFData   MechanismType = 0x0000402b
	MechanismHKDFKeyGen MechanismType = 0x0000402c
)

var mechanismNames = map[MechanismType]string{
	MechanismSHA1:       "CKM_SHA_1",
	MechanismSHA256:     "CKM_SHA256",
	MechanismSHA224:     "CKM_SHA224",
	MechanismSHA384:     "CKM_SHA384",
	MechanismSHA512:     "CKM_SHA512",
	MechanismSHA3_256:   "CKM_SHA3_256",
	MechanismSHA3_224:   "CKM_SHA3_224",
	MechanismSHA3_384:   "CKM_SHA3_384",
	MechanismSHA3_512:   "CKM_SHA3_512",
	MechanismHKDFDerive: "CKM_HKDF_DERIVE",
	MechanismHKDFData:   "CKM_HKDF_DATA",
	MechanismHKDFKeyGen: "CKM_HKDF_KEY_GEN",
}

func (m MechanismType) String() string {
	if name, ok := mechanismNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CKM_0x%08X", uint64(m))
}

// IsDigest reports whether m names one of the digest mechanisms above.
func (m MechanismType) IsDigest() bool {
	switch m {
	case MechanismSHA1, MechanismSHA224, MechanismSHA256, MechanismSHA384, MechanismSHA512,
		MechanismSHA3_224, MechanismSHA3_256, MechanismSHA3_384, MechanismSHA3_512:
		return true
	default:
		return false
	}
}
