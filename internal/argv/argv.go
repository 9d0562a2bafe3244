package argv

import (
	"math"
	"strings"

	"github.com/wippyai/go-lld/errors"
)

// MaxArgs is the largest vector a C int argc can describe.
const MaxArgs = math.MaxInt32

// Vector is an ordered set of NUL-terminated argument buffers.
// The zero value is an empty vector.
type Vector struct {
	bufs [][]byte
	size int
}

// Encode converts args into NUL-terminated buffers. It fails on the first
// argument that contains a NUL byte; no buffers are returned in that case.
func Encode(args []string) (Vector, error) {
	if len(args) > MaxArgs {
		return Vector{}, errors.Overflow(errors.PhaseMarshal, []string{"argc"}, len(args), "C int")
	}

	for i, arg := range args {
		if strings.IndexByte(arg, 0) >= 0 {
			return Vector{}, errors.EmbeddedNUL(i, arg)
		}
	}

	v := Vector{bufs: make([][]byte, len(args))}
	for i, arg := range args {
		buf := make([]byte, len(arg)+1)
		copy(buf, arg)
		v.bufs[i] = buf
		v.size += len(buf)
	}
	return v, nil
}

// Len returns argc.
func (v Vector) Len() int {
	return len(v.bufs)
}

// Bytes returns argument i including its trailing NUL.
// The slice is owned by the vector and must not be modified.
func (v Vector) Bytes(i int) []byte {
	return v.bufs[i]
}

// String returns argument i without its trailing NUL.
func (v Vector) String(i int) string {
	b := v.bufs[i]
	return string(b[:len(b)-1])
}

// Size returns the total number of bytes across all buffers, terminators included.
func (v Vector) Size() int {
	return v.size
}

// Strings returns the arguments as Go strings, in order.
func (v Vector) Strings() []string {
	out := make([]string, len(v.bufs))
	for i := range v.bufs {
		out[i] = v.String(i)
	}
	return out
}
