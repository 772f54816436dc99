package cryptoki

import "github.com/coinbase/cb-cryptoki-go/internal/cgo"

var (
	Version         = "v0.0.0-in-progress"
	HeaderVersion   = "3.0"
	fallbackVersion = "unknown"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// CryptokiVersion returns the PKCS#11 header version the native boundary was
// compiled against. Without cgo it reports the pinned HeaderVersion when it
// is set, and "unknown" otherwise.
func CryptokiVersion() string {
	if v := cgo.CryptokiVersion(); v != "" {
		return v
	}
	if HeaderVersion != "" {
		return HeaderVersion
	}
	return fallbackVersion
}
