package mechanism

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
)

// SaltKind mirrors the CKF_HKDF_SALT_* discriminant stored in ulSaltType.
type SaltKind cryptoki.ULong

const (
	SaltKindNull SaltKind = 0x00000001 // CKF_HKDF_SALT_NULL
	SaltKindData SaltKind = 0x00000002 // CKF_HKDF_SALT_DATA
	SaltKindKey  SaltKind = 0x00000004 // CKF_HKDF_SALT_KEY
)

func (k SaltKind) String() string {
	switch k {
	case SaltKindNull:
		return "CKF_HKDF_SALT_NULL"
	case SaltKindData:
		return "CKF_HKDF_SALT_DATA"
	case SaltKindKey:
		return "CKF_HKDF_SALT_KEY"
	default:
		return fmt.Sprintf("SaltKind(%d)", uint64(k))
	}
}

// Salt is the salt for the extract stage. It is one of SaltNull, SaltData
// or SaltKey.
type Salt interface {
	Kind() SaltKind
	isSalt()
}

// SaltNull means no salt is supplied.
type SaltNull struct{}

// SaltData supplies the salt bytes directly. An empty SaltData is distinct
// from SaltNull: the record still carries CKF_HKDF_SALT_DATA.
type SaltData []byte

// SaltKey supplies the salt as a key object held by the token.
type SaltKey struct {
	Key cryptoki.ObjectHandle
}

func (SaltNull) Kind() SaltKind { return SaltKindNull }
func (SaltData) Kind() SaltKind { return SaltKindData }
func (SaltKey) Kind() SaltKind  { return SaltKindKey }

func (SaltNull) isSalt() {}
func (SaltData) isSalt() {}
func (SaltKey) isSalt()  {}

// HKDFRecord has the field order and natural alignment of CK_HKDF_PARAMS.
// Salt and Info are Go pointers into caller-owned buffers; while the record
// is reachable the garbage collector keeps those buffers alive.
//
// Only SaltType decides which salt fields are meaningful. Readers must
// ignore the others.
type HKDFRecord struct {
	Extract          cryptoki.BBool
	Expand           cryptoki.BBool
	PRFHashMechanism cryptoki.MechanismType
	SaltType         cryptoki.ULong
	Salt             *byte
	SaltLen          cryptoki.ULong
	SaltKey          cryptoki.ULong
	Info             *byte
	InfoLen          cryptoki.ULong
}

// Validate checks the discriminant and payload invariants of a record
// without dereferencing either pointer. Use it on records produced outside
// this package before handing them to TrustHKDFRecord.
func (r *HKDFRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", cryptoki.ErrInvalidRecord)
	}
	switch SaltKind(r.SaltType) {
	case SaltKindNull:
		if r.Salt != nil || r.SaltLen != 0 || r.SaltKey != 0 {
			return fmt.Errorf("%w: salt fields set with %s", cryptoki.ErrInvalidRecord, SaltKindNull)
		}
	case SaltKindData:
		if r.Salt == nil {
			return fmt.Errorf("%w: nil salt pointer with %s", cryptoki.ErrInvalidRecord, SaltKindData)
		}
		if r.SaltKey != 0 {
			return fmt.Errorf("%w: salt key set with %s", cryptoki.ErrInvalidRecord, SaltKindData)
		}
		if uint64(r.SaltLen) > math.MaxInt {
			return fmt.Errorf("%w: salt length %d exceeds address space", cryptoki.ErrInvalidRecord, uint64(r.SaltLen))
		}
	case SaltKindKey:
		if r.Salt != nil || r.SaltLen != 0 {
			return fmt.Errorf("%w: salt data set with %s", cryptoki.ErrInvalidRecord, SaltKindKey)
		}
		if r.SaltKey == 0 {
			return fmt.Errorf("%w: invalid salt key handle", cryptoki.ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: %w", cryptoki.ErrInvalidRecord, &cryptoki.InvalidSaltTypeError{Value: r.SaltType})
	}
	if r.Info == nil {
		return fmt.Errorf("%w: nil info pointer", cryptoki.ErrInvalidRecord)
	}
	if uint64(r.InfoLen) > math.MaxInt {
		return fmt.Errorf("%w: info length %d exceeds address space", cryptoki.ErrInvalidRecord, uint64(r.InfoLen))
	}
	return nil
}

// HKDFParams wraps a CK_HKDF_PARAMS record. It has no fields besides the
// record, so a *HKDFParams and a *HKDFRecord address the same bytes.
//
// A record built by NewHKDFParams borrows the salt and info buffers. Callers
// must not modify them while the record is in use by a token; no lock
// protects them. Reading the same record from several goroutines is safe.
type HKDFParams struct {
	inner HKDFRecord
}

// nonEmpty backs the pointer of every zero-length buffer so that pInfo (and
// pSalt for an empty SaltData) is never NULL.
var nonEmpty byte

// NewHKDFParams builds the record for the HKDF mechanisms.
//
//   - extract: whether to execute the extract portion of HKDF.
//   - expand: whether to execute the expand portion of HKDF.
//   - prfHash: the digest used for the HMAC in the underlying HKDF operation.
//   - salt: the salt for the extract stage. A nil Salt is SaltNull.
//   - info: the info string for the expand stage.
//
// It returns an error wrapping cryptoki.ErrLengthOverflow if the salt or
// info length does not fit in CK_ULONG, and one wrapping
// cryptoki.ErrInvalidRecord if a SaltKey carries CK_INVALID_HANDLE.
func NewHKDFParams(extract, expand bool, prfHash cryptoki.MechanismType, salt Salt, info []byte) (*HKDFParams, error) {
	if salt == nil {
		salt = SaltNull{}
	}

	infoLen, err := cryptoki.ToULong("info", len(info))
	if err != nil {
		return nil, err
	}

	p := &HKDFParams{inner: HKDFRecord{
		Extract:          cryptoki.BoolToBBool(extract),
		Expand:           cryptoki.BoolToBBool(expand),
		PRFHashMechanism: prfHash,
		SaltType:         cryptoki.ULong(salt.Kind()),
		Info:             bufferPointer(info),
		InfoLen:          infoLen,
	}}

	switch s := salt.(type) {
	case SaltNull:
	case SaltData:
		saltLen, err := cryptoki.ToULong("salt", len(s))
		if err != nil {
			return nil, err
		}
		p.inner.Salt = bufferPointer(s)
		p.inner.SaltLen = saltLen
	case SaltKey:
		if !s.Key.IsValid() {
			return nil, fmt.Errorf("%w: salt key is CK_INVALID_HANDLE", cryptoki.ErrInvalidRecord)
		}
		p.inner.SaltKey = s.Key.Handle()
	default:
		return nil, fmt.Errorf("%w: unsupported salt %T", cryptoki.ErrInvalidSaltType, salt)
	}
	return p, nil
}

func bufferPointer(b []byte) *byte {
	if ptr := unsafe.SliceData(b); ptr != nil {
		return ptr
	}
	return &nonEmpty
}

// TrustHKDFRecord reinterprets r as HKDFParams without copying. This is the
// only entry point for records built outside NewHKDFParams, such as records
// filled in by native code.
//
// The caller asserts that r satisfies the record invariants: when SaltType
// is CKF_HKDF_SALT_DATA, Salt is valid for SaltLen bytes, and Info is valid
// for InfoLen bytes, for as long as the returned value is used. None of this
// can be checked here. Validate checks everything that can.
func TrustHKDFRecord(r *HKDFRecord) *HKDFParams {
	return (*HKDFParams)(unsafe.Pointer(r))
}

// Record returns the underlying record. The pointer aliases p; writing
// through it can break the invariants the accessors rely on.
func (p *HKDFParams) Record() *HKDFRecord {
	return &p.inner
}

// Extract reports whether to execute the extract portion of HKDF.
func (p *HKDFParams) Extract() bool {
	return p.inner.Extract.Bool()
}

// Expand reports whether to execute the expand portion of HKDF.
func (p *HKDFParams) Expand() bool {
	return p.inner.Expand.Bool()
}

// PRFHashMechanism is the base hash used for the HMAC.
func (p *HKDFParams) PRFHashMechanism() cryptoki.MechanismType {
	return p.inner.PRFHashMechanism
}

// Salt returns the salt for the extract stage. SaltData aliases the record's
// buffer.
//
// An unknown discriminant means the record was corrupted or built outside
// the invariants. Salt panics with *cryptoki.InvalidSaltTypeError rather
// than guessing a variant.
func (p *HKDFParams) Salt() Salt {
	switch SaltKind(p.inner.SaltType) {
	case SaltKindNull:
		return SaltNull{}
	case SaltKindData:
		return SaltData(unsafe.Slice(p.inner.Salt, p.inner.SaltLen))
	case SaltKindKey:
		return SaltKey{Key: cryptoki.NewObjectHandle(p.inner.SaltKey)}
	default:
		panic(&cryptoki.InvalidSaltTypeError{Value: p.inner.SaltType})
	}
}

// Info returns the info string for the expand stage. The slice aliases the
// record's buffer.
func (p *HKDFParams) Info() []byte {
	return unsafe.Slice(p.inner.Info, p.inner.InfoLen)
}

// Pin pins the salt and info buffers so the record can be passed to C while
// it holds Go pointers. The caller owns pinner and unpins it once the
// native call returns.
func (p *HKDFParams) Pin(pinner *runtime.Pinner) {
	if p.inner.Salt != nil {
		pinner.Pin(p.inner.Salt)
	}
	if p.inner.Info != nil {
		pinner.Pin(p.inner.Info)
	}
}

// String describes the parameters without their buffer contents.
func (p *HKDFParams) String() string {
	var salt string
	switch SaltKind(p.inner.SaltType) {
	case SaltKindNull:
		salt = "null"
	case SaltKindData:
		salt = fmt.Sprintf("data(%d bytes)", uint64(p.inner.SaltLen))
	case SaltKindKey:
		salt = cryptoki.NewObjectHandle(p.inner.SaltKey).String()
	default:
		salt = SaltKind(p.inner.SaltType).String()
	}
	return fmt.Sprintf("HKDFParams{extract=%t expand=%t prf=%s salt=%s info=%d bytes}",
		p.Extract(), p.Expand(), p.inner.PRFHashMechanism, salt, uint64(p.inner.InfoLen))
}
