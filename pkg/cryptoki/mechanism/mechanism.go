package mechanism

import (
	"unsafe"

	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
)

// Mechanism pairs a mechanism type with its parameter record, the Go side of
// CK_MECHANISM.
type Mechanism struct {
	Type   cryptoki.MechanismType
	Params *HKDFParams
}

// NewHKDFDerive returns CKM_HKDF_DERIVE with p.
func NewHKDFDerive(p *HKDFParams) Mechanism {
	return Mechanism{Type: cryptoki.MechanismHKDFDerive, Params: p}
}

// NewHKDFData returns CKM_HKDF_DATA with p. The derived object is a data
// object rather than a key.
func NewHKDFData(p *HKDFParams) Mechanism {
	return Mechanism{Type: cryptoki.MechanismHKDFData, Params: p}
}

// NewHKDFKeyGen returns CKM_HKDF_KEY_GEN, which takes no parameter.
func NewHKDFKeyGen() Mechanism {
	return Mechanism{Type: cryptoki.MechanismHKDFKeyGen}
}

// Parameter returns the pParameter and ulParameterLen values of the
// CK_MECHANISM. A mechanism without parameters yields (nil, 0).
func (m Mechanism) Parameter() (unsafe.Pointer, cryptoki.ULong) {
	if m.Params == nil {
		return nil, 0
	}
	return unsafe.Pointer(&m.Params.inner), cryptoki.ULong(unsafe.Sizeof(m.Params.inner))
}

func (m Mechanism) String() string {
	if m.Params == nil {
		return m.Type.String()
	}
	return m.Type.String() + " " + m.Params.String()
}
