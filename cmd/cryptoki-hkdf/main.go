// Command cryptoki-hkdf builds a CK_HKDF_PARAMS record from flags, prints its
// fields and, when the native boundary is compiled in, runs the token-side
// parameter check against it.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki/logging"
	"github.com/coinbase/cb-cryptoki-go/pkg/cryptoki/mechanism"
)

type options struct {
	extract   bool
	expand    bool
	prf       string
	saltHex   string
	saltKey   uint64
	emptySalt bool
	info      string
	data      bool
	verbose   bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.extract, "extract", true, "run the extract stage")
	flag.BoolVar(&opts.expand, "expand", true, "run the expand stage")
	flag.StringVar(&opts.prf, "prf", "sha256", "PRF hash (sha1, sha224, sha256, sha384, sha512, sha3-224, sha3-256, sha3-384, sha3-512)")
	flag.StringVar(&opts.saltHex, "salt-hex", "", "explicit salt as hex")
	flag.BoolVar(&opts.emptySalt, "empty-salt", false, "explicit zero-length salt (CKF_HKDF_SALT_DATA)")
	flag.Uint64Var(&opts.saltKey, "salt-key", 0, "salt key object handle")
	flag.StringVar(&opts.info, "info", "", "info string for the expand stage")
	flag.BoolVar(&opts.data, "data", false, "use CKM_HKDF_DATA instead of CKM_HKDF_DERIVE")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	ctx := context.Background()

	logger.Debug(ctx, "versions", "wrapper", cryptoki.WrapperVersion(), "cryptoki", cryptoki.CryptokiVersion())

	mech, err := build(opts)
	if err != nil {
		log.Fatalf("build parameters: %v", err)
	}
	logger.Info(ctx, "built mechanism", "mechanism", mech.String(), logging.Redacted("info"))

	printRecord(mech)

	if err := mech.Params.CheckNative(); err != nil {
		if errors.Is(err, cryptoki.ErrNotBuilt) {
			fmt.Printf("native check unavailable: %v\n", err)
			return
		}
		log.Fatalf("native check failed: %v", err)
	}
	fmt.Println("native check: CKR_OK")
}

func build(opts options) (mechanism.Mechanism, error) {
	prf, err := parsePRF(opts.prf)
	if err != nil {
		return mechanism.Mechanism{}, err
	}
	salt, err := parseSalt(opts)
	if err != nil {
		return mechanism.Mechanism{}, err
	}
	params, err := mechanism.NewHKDFParams(opts.extract, opts.expand, prf, salt, []byte(opts.info))
	if err != nil {
		return mechanism.Mechanism{}, err
	}
	if opts.data {
		return mechanism.NewHKDFData(params), nil
	}
	return mechanism.NewHKDFDerive(params), nil
}

func parsePRF(name string) (cryptoki.MechanismType, error) {
	switch strings.ToLower(name) {
	case "sha1", "sha-1":
		return cryptoki.MechanismSHA1, nil
	case "sha224":
		return cryptoki.MechanismSHA224, nil
	case "sha256":
		return cryptoki.MechanismSHA256, nil
	case "sha384":
		return cryptoki.MechanismSHA384, nil
	case "sha512":
		return cryptoki.MechanismSHA512, nil
	case "sha3-224":
		return cryptoki.MechanismSHA3_224, nil
	case "sha3-256":
		return cryptoki.MechanismSHA3_256, nil
	case "sha3-384":
		return cryptoki.MechanismSHA3_384, nil
	case "sha3-512":
		return cryptoki.MechanismSHA3_512, nil
	default:
		return 0, fmt.Errorf("unknown PRF %q", name)
	}
}

func parseSalt(opts options) (mechanism.Salt, error) {
	set := 0
	for _, given := range []bool{opts.saltHex != "", opts.emptySalt, opts.saltKey != 0} {
		if given {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("-salt-hex, -empty-salt and -salt-key are mutually exclusive")
	}
	switch {
	case opts.saltKey != 0:
		if opts.saltKey > uint64(cryptoki.MaxULong) {
			return nil, fmt.Errorf("salt-key %d does not fit in CK_ULONG", opts.saltKey)
		}
		return mechanism.SaltKey{Key: cryptoki.NewObjectHandle(cryptoki.ULong(opts.saltKey))}, nil
	case opts.saltHex != "" || opts.emptySalt:
		b, err := hex.DecodeString(opts.saltHex)
		if err != nil {
			return nil, fmt.Errorf("decode salt: %w", err)
		}
		return mechanism.SaltData(b), nil
	default:
		return mechanism.SaltNull{}, nil
	}
}

func printRecord(mech mechanism.Mechanism) {
	rec := mech.Params.Record()
	_, size := mech.Parameter()
	fmt.Printf("mechanism        %s\n", mech.Type)
	fmt.Printf("ulParameterLen   %d\n", uint64(size))
	fmt.Printf("bExtract         %d (offset %d)\n", rec.Extract, unsafe.Offsetof(rec.Extract))
	fmt.Printf("bExpand          %d (offset %d)\n", rec.Expand, unsafe.Offsetof(rec.Expand))
	fmt.Printf("prfHashMechanism %s (offset %d)\n", rec.PRFHashMechanism, unsafe.Offsetof(rec.PRFHashMechanism))
	fmt.Printf("ulSaltType       %s (offset %d)\n", mechanism.SaltKind(rec.SaltType), unsafe.Offsetof(rec.SaltType))
	fmt.Printf("pSalt            %s (offset %d)\n", nullness(rec.Salt), unsafe.Offsetof(rec.Salt))
	fmt.Printf("ulSaltLen        %d (offset %d)\n", uint64(rec.SaltLen), unsafe.Offsetof(rec.SaltLen))
	fmt.Printf("hSaltKey         %s (offset %d)\n", strconv.FormatUint(uint64(rec.SaltKey), 10), unsafe.Offsetof(rec.SaltKey))
	fmt.Printf("pInfo            %s (offset %d)\n", nullness(rec.Info), unsafe.Offsetof(rec.Info))
	fmt.Printf("ulInfoLen        %d (offset %d)\n", uint64(rec.InfoLen), unsafe.Offsetof(rec.InfoLen))
}

func nullness(p *byte) string {
	if p == nil {
		return "NULL"
	}
	return "non-NULL"
}
