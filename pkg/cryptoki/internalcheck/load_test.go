package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/coinbase/cb-cryptoki-go"

// secretPackages handle salt, info or derived key bytes.
var secretPackages = []string{
	modulePath + "/pkg/cryptoki/mechanism",
	modulePath + "/pkg/cryptoki/internal/testtoken",
	modulePath + "/pkg/cryptoki/logging",
}

func load(t *testing.T, mode packages.LoadMode, patterns ...string) []*packages.Package {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{Mode: mode}, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	return pkgs
}
