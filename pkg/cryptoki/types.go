package cryptoki

import "fmt"

// MaxULong is the largest count representable in a CK_ULONG field.
const MaxULong = ^ULong(0)

// BBool mirrors CK_BBOOL, a single byte where any nonzero value is true.
type BBool uint8

const (
	False BBool = 0
	True  BBool = 1
)

// BoolToBBool returns the canonical encoding of b.
func BoolToBBool(b bool) BBool {
	if b {
		return True
	}
	return False
}

// Bool reports whether the flag is set. Nonzero values other than True are
// accepted, matching how tokens read CK_BBOOL.
func (b BBool) Bool() bool {
	return b != False
}

// ObjectHandle is an opaque CK_OBJECT_HANDLE issued by a token session.
type ObjectHandle struct {
	handle ULong
}

// InvalidHandle is CK_INVALID_HANDLE.
var InvalidHandle = ObjectHandle{}

// NewObjectHandle wraps a raw handle value.
func NewObjectHandle(handle ULong) ObjectHandle {
	return ObjectHandle{handle: handle}
}

// Handle returns the raw value to place in a foreign record.
func (h ObjectHandle) Handle() ULong {
	return h.handle
}

// IsValid reports whether h differs from CK_INVALID_HANDLE.
func (h ObjectHandle) IsValid() bool {
	return h.handle != 0
}

func (h ObjectHandle) String() string {
	return fmt.Sprintf("object#%d", uint64(h.handle))
}
