//go:build !(cgo && lld)

package native

import (
	"context"
	"errors"
	"testing"

	lld "github.com/wippyai/go-lld"
	lldErrors "github.com/wippyai/go-lld/errors"
)

func TestUnavailable(t *testing.T) {
	if Available {
		t.Fatal("stub build reports native backend available")
	}

	unsupported := &lldErrors.Error{Phase: lldErrors.PhaseLoad, Kind: lldErrors.KindUnsupported}

	if _, err := Open(); !errors.Is(err, unsupported) {
		t.Errorf("Open error = %v", err)
	}
	if _, err := Bridge(); !errors.Is(err, unsupported) {
		t.Errorf("Bridge error = %v", err)
	}
	if _, err := Invoke(context.Background(), lld.ELF, []string{"--version"}); !errors.Is(err, unsupported) {
		t.Errorf("Invoke error = %v", err)
	}
	if _, err := Link(context.Background(), lld.ELF, nil); !errors.Is(err, unsupported) {
		t.Errorf("Link error = %v", err)
	}

	var lib Library
	if _, err := lib.Link(context.Background(), lld.ELF, mustEncode(t)); err == nil {
		t.Error("stub Link should fail")
	}
}
