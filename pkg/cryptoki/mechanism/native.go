package mechanism

import (
	"bytes"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/coinbase/cb-cryptoki-go/internal/cgo"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
)

// CheckNative passes the record through the native CK_HKDF_PARAMS
// declaration, runs the token-side parameter check and confirms that C reads
// back the same flags, discriminant and bytes the accessors report. It
// returns cryptoki.ErrNotBuilt without cgo.
func (p *HKDFParams) CheckNative() error {
	if !cgo.Available {
		return cryptoki.ErrNotBuilt
	}

	var pinner runtime.Pinner
	p.Pin(&pinner)
	defer pinner.Unpin()

	view, rv := cgo.InspectHKDFParams(unsafe.Pointer(&p.inner))
	if err := cryptoki.RemapError(cryptoki.ULong(rv)); err != nil {
		return err
	}

	switch {
	case view.Extract != p.Extract() || view.Expand != p.Expand():
		return fmt.Errorf("%w: native flags differ", cryptoki.ErrInvalidRecord)
	case view.PRFHash != uint64(p.inner.PRFHashMechanism):
		return fmt.Errorf("%w: native prf hash differs", cryptoki.ErrInvalidRecord)
	case view.SaltType != uint64(p.inner.SaltType) || view.SaltKey != uint64(p.inner.SaltKey):
		return fmt.Errorf("%w: native salt selector differs", cryptoki.ErrInvalidRecord)
	case !bytes.Equal(view.Info, p.Info()):
		return fmt.Errorf("%w: native info differs", cryptoki.ErrInvalidRecord)
	}
	if salt, ok := p.Salt().(SaltData); ok && !bytes.Equal(view.Salt, salt) {
		return fmt.Errorf("%w: native salt differs", cryptoki.ErrInvalidRecord)
	}
	return nil
}
