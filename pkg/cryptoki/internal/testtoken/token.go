// Package testtoken is an in-memory stand-in for a PKCS#11 token. It reads
// HKDF mechanism parameters through the same pointer the real C_DeriveKey
// would receive, which lets the marshaling layer be tested end to end.
//
// It is not a token implementation: there are no sessions, no attributes
// beyond the object value, and every object is extractable.
package testtoken

import (
	"context"
	"crypto/sha1" // #nosec G505 -- CKM_SHA_1 is a valid HKDF PRF in PKCS#11
	"crypto/sha256"
	"crypto/sha3"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/crypto/hkdf"

	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki/logging"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki/mechanism"
)

var (
	ErrObjectHandleInvalid   = errors.New("CKR_OBJECT_HANDLE_INVALID")
	ErrKeyHandleInvalid      = errors.New("CKR_KEY_HANDLE_INVALID")
	ErrMechanismInvalid      = errors.New("CKR_MECHANISM_INVALID")
	ErrMechanismParamInvalid = errors.New("CKR_MECHANISM_PARAM_INVALID")
	ErrKeySizeRange          = errors.New("CKR_KEY_SIZE_RANGE")
)

// ObjectClass distinguishes derived keys from CKM_HKDF_DATA output.
type ObjectClass int

const (
	ClassSecretKey ObjectClass = iota
	ClassData
)

func (c ObjectClass) String() string {
	switch c {
	case ClassSecretKey:
		return "CKO_SECRET_KEY"
	case ClassData:
		return "CKO_DATA"
	default:
		return "CKO_UNKNOWN"
	}
}

// Config tunes the simulated token.
type Config struct {
	// MaxDerivedLength caps the output length of a derivation. Zero means
	// the HKDF limit of 255 hash blocks.
	MaxDerivedLength int

	// Logger receives derivation events. Nil discards them.
	Logger logging.Logger
}

type object struct {
	class ObjectClass
	value []byte
}

// Token holds secret objects by handle. It is safe for concurrent use.
type Token struct {
	mu      sync.RWMutex
	objects map[cryptoki.ULong]*object
	nextID  cryptoki.ULong
	cfg     Config
	logger  logging.Logger
}

// New creates an empty token.
func New(cfg Config) *Token {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Token{
		objects: make(map[cryptoki.ULong]*object),
		nextID:  1,
		cfg:     cfg,
		logger:  logger.With("component", "testtoken"),
	}
}

// ImportSecret stores a copy of value as a secret key object.
func (t *Token) ImportSecret(value []byte) cryptoki.ObjectHandle {
	return t.store(ClassSecretKey, append([]byte(nil), value...))
}

func (t *Token) store(class ObjectClass, value []byte) cryptoki.ObjectHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.objects[id] = &object{class: class, value: value}
	return cryptoki.NewObjectHandle(id)
}

// lookup returns a snapshot of the object taken under the read lock. The
// value is a copy, so a concurrent Destroy cannot zeroize it.
func (t *Token) lookup(h cryptoki.ObjectHandle) (object, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	obj, ok := t.objects[h.Handle()]
	if !ok {
		return object{}, false
	}
	return object{class: obj.class, value: append([]byte(nil), obj.value...)}, true
}

// Value returns a copy of the object's value and its class.
func (t *Token) Value(h cryptoki.ObjectHandle) ([]byte, ObjectClass, error) {
	obj, ok := t.lookup(h)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrObjectHandleInvalid, h)
	}
	return obj.value, obj.class, nil
}

// Destroy zeroizes and removes an object.
func (t *Token) Destroy(h cryptoki.ObjectHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	obj, ok := t.objects[h.Handle()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectHandleInvalid, h)
	}
	cryptoki.ZeroizeBytes(obj.value)
	delete(t.objects, h.Handle())
	return nil
}

// DeriveKey runs CKM_HKDF_DERIVE or CKM_HKDF_DATA over the base key and
// stores length bytes of output as a new object.
//
// With only extract set the output is the pseudorandom key and length must
// be zero or the hash size. With only expand set the base key is taken to
// be the pseudorandom key.
func (t *Token) DeriveKey(ctx context.Context, mech mechanism.Mechanism, base cryptoki.ObjectHandle, length int) (cryptoki.ObjectHandle, error) {
	if err := ctx.Err(); err != nil {
		return cryptoki.InvalidHandle, err
	}

	var class ObjectClass
	switch mech.Type {
	case cryptoki.MechanismHKDFDerive:
		class = ClassSecretKey
	case cryptoki.MechanismHKDFData:
		class = ClassData
	default:
		return cryptoki.InvalidHandle, fmt.Errorf("%w: %s", ErrMechanismInvalid, mech.Type)
	}

	params, err := readParams(mech)
	if err != nil {
		return cryptoki.InvalidHandle, err
	}
	if !params.Extract() && !params.Expand() {
		return cryptoki.InvalidHandle, fmt.Errorf("%w: neither extract nor expand requested", ErrMechanismParamInvalid)
	}

	newHash, err := prf(params.PRFHashMechanism())
	if err != nil {
		return cryptoki.InvalidHandle, err
	}

	baseObj, ok := t.lookup(base)
	if !ok || baseObj.class != ClassSecretKey {
		return cryptoki.InvalidHandle, fmt.Errorf("%w: base %s", ErrKeyHandleInvalid, base)
	}
	defer cryptoki.ZeroizeBytes(baseObj.value)

	var salt []byte
	switch s := params.Salt().(type) {
	case mechanism.SaltNull:
	case mechanism.SaltData:
		salt = s
	case mechanism.SaltKey:
		saltObj, ok := t.lookup(s.Key)
		if !ok || saltObj.class != ClassSecretKey {
			return cryptoki.InvalidHandle, fmt.Errorf("%w: salt %s", ErrKeyHandleInvalid, s.Key)
		}
		defer cryptoki.ZeroizeBytes(saltObj.value)
		salt = saltObj.value
	}

	out, err := t.derive(newHash, params, baseObj.value, salt, length)
	if err != nil {
		return cryptoki.InvalidHandle, err
	}

	h := t.store(class, out)
	t.logger.Debug(ctx, "derived object",
		"mechanism", mech.Type,
		"params", params.String(),
		"base", base,
		"object", h,
		"class", class,
		"length", len(out),
		logging.Redacted("value"),
	)
	return h, nil
}

// readParams interprets the mechanism parameter the way C_DeriveKey does:
// from the raw pointer and length, with no help from the Go types.
func readParams(mech mechanism.Mechanism) (*mechanism.HKDFParams, error) {
	ptr, size := mech.Parameter()
	if ptr == nil || uintptr(size) != unsafe.Sizeof(mechanism.HKDFRecord{}) {
		return nil, fmt.Errorf("%w: parameter length %d", ErrMechanismParamInvalid, uint64(size))
	}
	rec := (*mechanism.HKDFRecord)(ptr)
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMechanismParamInvalid, err)
	}
	return mechanism.TrustHKDFRecord(rec), nil
}

func (t *Token) derive(newHash func() hash.Hash, params *mechanism.HKDFParams, ikm, salt []byte, length int) ([]byte, error) {
	hashLen := newHash().Size()

	if !params.Expand() {
		if length != 0 && length != hashLen {
			return nil, fmt.Errorf("%w: extract output is %d bytes, requested %d", ErrKeySizeRange, hashLen, length)
		}
		return hkdf.Extract(newHash, ikm, salt), nil
	}

	limit := 255 * hashLen
	if t.cfg.MaxDerivedLength > 0 && t.cfg.MaxDerivedLength < limit {
		limit = t.cfg.MaxDerivedLength
	}
	if length <= 0 || length > limit {
		return nil, fmt.Errorf("%w: length %d outside 1..%d", ErrKeySizeRange, length, limit)
	}

	var r io.Reader
	if params.Extract() {
		r = hkdf.New(newHash, ikm, salt, params.Info())
	} else {
		r = hkdf.Expand(newHash, ikm, params.Info())
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

func prf(m cryptoki.MechanismType) (func() hash.Hash, error) {
	switch m {
	case cryptoki.MechanismSHA1:
		return sha1.New, nil
	case cryptoki.MechanismSHA224:
		return sha256.New224, nil
	case cryptoki.MechanismSHA256:
		return sha256.New, nil
	case cryptoki.MechanismSHA384:
		return sha512.New384, nil
	case cryptoki.MechanismSHA512:
		return sha512.New, nil
	case cryptoki.MechanismSHA3_224:
		return func() hash.Hash { return sha3.New224() }, nil
	case cryptoki.MechanismSHA3_256:
		return func() hash.Hash { return sha3.New256() }, nil
	case cryptoki.MechanismSHA3_384:
		return func() hash.Hash { return sha3.New384() }, nil
	case cryptoki.MechanismSHA3_512:
		return func() hash.Hash { return sha3.New512() }, nil
	default:
		return nil, fmt.Errorf("%w: unsupported PRF %s", ErrMechanismParamInvalid, m)
	}
}
