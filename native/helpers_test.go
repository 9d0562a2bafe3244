package native

import (
	"testing"

	"github.com/wippyai/go-lld/internal/argv"
)

func mustEncode(t *testing.T, args ...string) argv.Vector {
	t.Helper()
	v, err := argv.Encode(args)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
