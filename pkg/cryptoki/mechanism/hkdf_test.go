package mechanism_test

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki/mechanism"
)

func recordBytes(p *byte, n cryptoki.ULong) []byte {
	return unsafe.Slice(p, n)
}

func TestNewHKDFParamsNullSalt(t *testing.T) {
	info := []byte("context-info")
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, mechanism.SaltNull{}, info)
	require.NoError(t, err)

	rec := p.Record()
	assert.Equal(t, cryptoki.True, rec.Extract)
	assert.Equal(t, cryptoki.True, rec.Expand)
	assert.Equal(t, cryptoki.MechanismSHA256, rec.PRFHashMechanism)
	assert.Equal(t, cryptoki.ULong(mechanism.SaltKindNull), rec.SaltType)
	assert.Nil(t, rec.Salt)
	assert.Zero(t, rec.SaltLen)
	assert.Zero(t, rec.SaltKey)
	assert.Equal(t, cryptoki.ULong(12), rec.InfoLen)
	require.NotNil(t, rec.Info)
	assert.Equal(t, "context-info", string(recordBytes(rec.Info, rec.InfoLen)))
}

func TestNewHKDFParamsDataSaltEmptyInfo(t *testing.T) {
	p, err := mechanism.NewHKDFParams(false, true, cryptoki.MechanismSHA256, mechanism.SaltData("abc"), []byte{})
	require.NoError(t, err)

	rec := p.Record()
	assert.Equal(t, cryptoki.False, rec.Extract)
	assert.Equal(t, cryptoki.True, rec.Expand)
	assert.Equal(t, cryptoki.ULong(mechanism.SaltKindData), rec.SaltType)
	require.NotNil(t, rec.Salt)
	assert.Equal(t, cryptoki.ULong(3), rec.SaltLen)
	assert.Equal(t, "abc", string(recordBytes(rec.Salt, rec.SaltLen)))
	assert.Zero(t, rec.SaltKey)
	assert.Zero(t, rec.InfoLen)
	assert.NotNil(t, rec.Info, "info pointer must be non-null even for an empty buffer")
}

func TestNewHKDFParamsKeySalt(t *testing.T) {
	salt := mechanism.SaltKey{Key: cryptoki.NewObjectHandle(42)}
	p, err := mechanism.NewHKDFParams(true, false, cryptoki.MechanismSHA384, salt, []byte("x"))
	require.NoError(t, err)

	rec := p.Record()
	assert.Equal(t, cryptoki.ULong(mechanism.SaltKindKey), rec.SaltType)
	assert.Equal(t, cryptoki.ULong(42), rec.SaltKey)
	assert.Nil(t, rec.Salt)
	assert.Zero(t, rec.SaltLen)
	assert.Equal(t, cryptoki.MechanismSHA384, rec.PRFHashMechanism)
	assert.Equal(t, cryptoki.ULong(1), rec.InfoLen)
}

func TestNilSaltIsNull(t *testing.T) {
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, mechanism.SaltNull{}, p.Salt())
	assert.NotNil(t, p.Record().Info)
	assert.Empty(t, p.Info())
}

func TestEmptySaltDataDistinctFromNull(t *testing.T) {
	empty, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, mechanism.SaltData{}, nil)
	require.NoError(t, err)
	null, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, mechanism.SaltNull{}, nil)
	require.NoError(t, err)

	assert.Equal(t, cryptoki.ULong(mechanism.SaltKindData), empty.Record().SaltType)
	assert.Zero(t, empty.Record().SaltLen)
	assert.NotNil(t, empty.Record().Salt)
	assert.Equal(t, cryptoki.ULong(mechanism.SaltKindNull), null.Record().SaltType)
	assert.Nil(t, null.Record().Salt)

	salt, ok := empty.Salt().(mechanism.SaltData)
	require.True(t, ok, "empty data salt read back as %T", empty.Salt())
	assert.Empty(t, salt)
	assert.NoError(t, empty.Record().Validate())
}

func TestHKDFParamsRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		extract bool
		expand  bool
		prf     cryptoki.MechanismType
		salt    mechanism.Salt
		info    []byte
	}{
		{"null salt", true, true, cryptoki.MechanismSHA256, mechanism.SaltNull{}, []byte("context-info")},
		{"data salt", false, true, cryptoki.MechanismSHA512, mechanism.SaltData("0123456789abcdef"), []byte("label")},
		{"empty data salt", true, false, cryptoki.MechanismSHA1, mechanism.SaltData{}, []byte{0}},
		{"key salt", true, false, cryptoki.MechanismSHA384, mechanism.SaltKey{Key: cryptoki.NewObjectHandle(7)}, []byte{}},
		{"no stages", false, false, cryptoki.MechanismSHA3_256, mechanism.SaltNull{}, []byte("info")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := mechanism.NewHKDFParams(tt.extract, tt.expand, tt.prf, tt.salt, tt.info)
			require.NoError(t, err)
			require.NoError(t, p.Record().Validate())

			// Read through a second view of the same memory, as a native
			// result path would.
			read := mechanism.TrustHKDFRecord(p.Record())
			assert.Equal(t, tt.extract, read.Extract())
			assert.Equal(t, tt.expand, read.Expand())
			assert.Equal(t, tt.prf, read.PRFHashMechanism())
			assert.Equal(t, tt.salt, read.Salt())
			assert.Equal(t, string(tt.info), string(read.Info()))
		})
	}
}

func TestSaltFieldConsistency(t *testing.T) {
	salts := []mechanism.Salt{
		mechanism.SaltNull{},
		mechanism.SaltData("salt"),
		mechanism.SaltData{},
		mechanism.SaltKey{Key: cryptoki.NewObjectHandle(99)},
	}

	for _, salt := range salts {
		t.Run(salt.Kind().String(), func(t *testing.T) {
			p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, salt, []byte("i"))
			require.NoError(t, err)
			rec := p.Record()

			allZero := rec.Salt == nil && rec.SaltLen == 0 && rec.SaltKey == 0
			dataSet := rec.Salt != nil && rec.SaltKey == 0
			keySet := rec.Salt == nil && rec.SaltLen == 0 && rec.SaltKey != 0

			held := 0
			for _, b := range []bool{allZero, dataSet, keySet} {
				if b {
					held++
				}
			}
			assert.Equal(t, 1, held)

			switch salt.Kind() {
			case mechanism.SaltKindNull:
				assert.True(t, allZero)
			case mechanism.SaltKindData:
				assert.True(t, dataSet)
			case mechanism.SaltKindKey:
				assert.True(t, keySet)
			}
		})
	}
}

func TestNewHKDFParamsRejectsInvalidSaltKey(t *testing.T) {
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256,
		mechanism.SaltKey{Key: cryptoki.InvalidHandle}, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptoki.ErrInvalidRecord)
	assert.Nil(t, p)
}

// Every record the builder accepts must also pass Validate.
func TestBuiltRecordsPassValidate(t *testing.T) {
	salts := []mechanism.Salt{
		nil,
		mechanism.SaltNull{},
		mechanism.SaltData("salt"),
		mechanism.SaltData{},
		mechanism.SaltKey{Key: cryptoki.NewObjectHandle(1)},
	}
	for _, salt := range salts {
		p, err := mechanism.NewHKDFParams(false, true, cryptoki.MechanismSHA512, salt, nil)
		require.NoError(t, err)
		assert.NoError(t, p.Record().Validate(), "salt %T", salt)
	}
}

func TestHKDFParamsBorrowsBuffers(t *testing.T) {
	salt := []byte("salt-bytes")
	info := []byte("info-bytes")
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, mechanism.SaltData(salt), info)
	require.NoError(t, err)

	assert.Same(t, &salt[0], p.Record().Salt)
	assert.Same(t, &info[0], p.Record().Info)
	assert.Same(t, &info[0], &p.Info()[0])
}

func TestSaltPanicsOnInvalidDiscriminant(t *testing.T) {
	info := []byte("info")
	rec := &mechanism.HKDFRecord{
		Extract:          cryptoki.True,
		PRFHashMechanism: cryptoki.MechanismSHA256,
		SaltType:         3,
		Info:             &info[0],
		InfoLen:          4,
	}
	p := mechanism.TrustHKDFRecord(rec)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_ = p.Salt()
	}()

	require.NotNil(t, recovered, "Salt must not default an unknown discriminant")
	err, ok := recovered.(error)
	require.True(t, ok, "panic value %T is not an error", recovered)
	assert.True(t, errors.Is(err, cryptoki.ErrInvalidSaltType))

	var saltErr *cryptoki.InvalidSaltTypeError
	require.ErrorAs(t, err, &saltErr)
	assert.Equal(t, cryptoki.ULong(3), saltErr.Value)

	// The unconditional fields stay readable.
	assert.Equal(t, "info", string(p.Info()))
	assert.True(t, p.Extract())
}

func TestBBoolNonzeroReadsTrue(t *testing.T) {
	info := []byte{}
	p, err := mechanism.NewHKDFParams(false, false, cryptoki.MechanismSHA256, nil, info)
	require.NoError(t, err)

	p.Record().Extract = 0x7f
	p.Record().Expand = 0xff
	assert.True(t, p.Extract())
	assert.True(t, p.Expand())
}

func TestHKDFRecordValidate(t *testing.T) {
	buf := []byte("buffer")
	valid := func() mechanism.HKDFRecord {
		return mechanism.HKDFRecord{
			Extract:          cryptoki.True,
			Expand:           cryptoki.True,
			PRFHashMechanism: cryptoki.MechanismSHA256,
			SaltType:         cryptoki.ULong(mechanism.SaltKindNull),
			Info:             &buf[0],
			InfoLen:          cryptoki.ULong(len(buf)),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*mechanism.HKDFRecord)
		wantErr bool
	}{
		{"valid null", func(*mechanism.HKDFRecord) {}, false},
		{"null with pointer", func(r *mechanism.HKDFRecord) { r.Salt = &buf[0] }, true},
		{"null with length", func(r *mechanism.HKDFRecord) { r.SaltLen = 1 }, true},
		{"null with handle", func(r *mechanism.HKDFRecord) { r.SaltKey = 5 }, true},
		{"valid data", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindData)
			r.Salt = &buf[0]
			r.SaltLen = 2
		}, false},
		{"data without pointer", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindData)
		}, true},
		{"data with handle", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindData)
			r.Salt = &buf[0]
			r.SaltKey = 5
		}, true},
		{"valid key", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindKey)
			r.SaltKey = 5
		}, false},
		{"key without handle", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindKey)
		}, true},
		{"key with data", func(r *mechanism.HKDFRecord) {
			r.SaltType = cryptoki.ULong(mechanism.SaltKindKey)
			r.SaltKey = 5
			r.Salt = &buf[0]
		}, true},
		{"unknown salt type", func(r *mechanism.HKDFRecord) { r.SaltType = 8 }, true},
		{"nil info", func(r *mechanism.HKDFRecord) {
			r.Info = nil
			r.InfoLen = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(&rec)
			err := rec.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, cryptoki.ErrInvalidRecord)
		})
	}
}

func TestHKDFRecordValidateUnknownSaltType(t *testing.T) {
	buf := []byte{1}
	rec := mechanism.HKDFRecord{SaltType: 0, Info: &buf[0], InfoLen: 1}
	err := rec.Validate()
	assert.ErrorIs(t, err, cryptoki.ErrInvalidRecord)
	assert.ErrorIs(t, err, cryptoki.ErrInvalidSaltType)

	var nilRec *mechanism.HKDFRecord
	assert.ErrorIs(t, nilRec.Validate(), cryptoki.ErrInvalidRecord)
}

func TestHKDFParamsStringOmitsBuffers(t *testing.T) {
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256,
		mechanism.SaltData("secret-salt"), []byte("secret-info"))
	require.NoError(t, err)

	s := p.String()
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "CKM_SHA256")
	assert.Contains(t, s, "data(11 bytes)")
	assert.True(t, strings.HasPrefix(s, "HKDFParams{"))
}

func TestMechanismParameter(t *testing.T) {
	p, err := mechanism.NewHKDFParams(true, true, cryptoki.MechanismSHA256, nil, []byte("i"))
	require.NoError(t, err)

	mech := mechanism.NewHKDFDerive(p)
	ptr, size := mech.Parameter()
	assert.Equal(t, cryptoki.MechanismHKDFDerive, mech.Type)
	assert.Equal(t, unsafe.Pointer(p.Record()), ptr)
	assert.Equal(t, cryptoki.ULong(unsafe.Sizeof(mechanism.HKDFRecord{})), size)
	assert.Contains(t, mech.String(), "CKM_HKDF_DERIVE")

	assert.Equal(t, cryptoki.MechanismHKDFData, mechanism.NewHKDFData(p).Type)

	keyGen := mechanism.NewHKDFKeyGen()
	ptr, size = keyGen.Parameter()
	assert.Equal(t, unsafe.Pointer(nil), ptr)
	assert.Zero(t, size)
	assert.Equal(t, "CKM_HKDF_KEY_GEN", keyGen.String())
}
