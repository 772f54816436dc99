package cryptoki

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthOverflow reports a buffer whose length does not fit the
	// foreign count width. Callers decide whether to reject or chunk.
	ErrLengthOverflow = errors.New("length does not fit in CK_ULONG")

	// ErrInvalidSaltType identifies a record whose salt discriminant is
	// outside the defined set. Readers panic with *InvalidSaltTypeError,
	// which matches this sentinel.
	ErrInvalidSaltType = errors.New("invalid HKDF salt type")

	// ErrInvalidRecord reports a foreign record whose fields contradict its
	// discriminant.
	ErrInvalidRecord = errors.New("invalid mechanism parameter record")

	// ErrNotBuilt reports that the native boundary was not compiled in
	// (cgo disabled or Windows).
	ErrNotBuilt = errors.New("cryptoki: native bindings not built")
)

// LengthOverflowError carries the offending field and length.
type LengthOverflowError struct {
	Field  string
	Length int
	Max    uint64
}

func (e *LengthOverflowError) Error() string {
	return fmt.Sprintf("%s length %d does not fit in foreign count (max %d)", e.Field, e.Length, e.Max)
}

func (e *LengthOverflowError) Is(target error) bool {
	return target == ErrLengthOverflow
}

// InvalidSaltTypeError is the panic value raised when a reader meets an
// unknown salt discriminant. It is never returned through normal control
// flow.
type InvalidSaltTypeError struct {
	Value ULong
}

func (e *InvalidSaltTypeError) Error() string {
	return fmt.Sprintf("invalid HKDF salt type 0x%08X", uint64(e.Value))
}

func (e *InvalidSaltTypeError) Is(target error) bool {
	return target == ErrInvalidSaltType
}

// Native return values surfaced by the cgo boundary.
const (
	CKR_OK                      ULong = 0x00000000
	CKR_ARGUMENTS_BAD           ULong = 0x00000007
	CKR_MECHANISM_PARAM_INVALID ULong = 0x00000071
)

// RemapError converts a native CK_RV into a public error. CKR_OK maps to nil.
func RemapError(rv ULong) error {
	switch rv {
	case CKR_OK:
		return nil
	case CKR_MECHANISM_PARAM_INVALID:
		return fmt.Errorf("%w: CKR_MECHANISM_PARAM_INVALID", ErrInvalidRecord)
	case CKR_ARGUMENTS_BAD:
		return errors.New("cryptoki: CKR_ARGUMENTS_BAD")
	default:
		return fmt.Errorf("cryptoki: native call failed with CK_RV 0x%08X", uint64(rv))
	}
}
