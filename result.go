package lld

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/go-lld/errors"
)

// Result is the Go-owned outcome of one invocation.
// It holds no reference to foreign memory.
type Result struct {
	Messages string
	Flavor   Flavor
	Success  bool
}

// Err converts the result: nil on success, a link_failure error carrying
// the diagnostics otherwise. Warnings on success do not make it fail.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.LinkFailure(r.Flavor.String(), r.Messages)
}

// Warnings returns diagnostics emitted by a successful link.
func (r *Result) Warnings() string {
	if !r.Success {
		return ""
	}
	return r.Messages
}

// copyMessages decodes the foreign diagnostic bytes into a Go string.
// Malformed UTF-8 is replaced with U+FFFD; decoding never fails the call.
func copyMessages(view []byte) string {
	if len(view) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(view)
	if err != nil {
		// Decoder only replaces; fall back to a plain copy.
		return string(view)
	}
	return string(out)
}
