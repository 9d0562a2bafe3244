package argv

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/go-lld/errors"
)

func TestEncode_PreservesOrder(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "empty", args: nil},
		{name: "single", args: []string{"--version"}},
		{name: "flag value pairs", args: []string{"-o", "out", "-L", "/usr/lib", "a.o", "b.o"}},
		{name: "duplicates kept", args: []string{"a.o", "a.o", "-lc", "-lc"}},
		{name: "empty strings kept", args: []string{"", "-o", ""}},
		{name: "non ascii", args: []string{"ñ.o", "日本.o", "\xff\xfe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Encode(tt.args)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if v.Len() != len(tt.args) {
				t.Fatalf("Len = %d, want %d", v.Len(), len(tt.args))
			}

			size := 0
			for i, arg := range tt.args {
				b := v.Bytes(i)
				if len(b) != len(arg)+1 {
					t.Errorf("arg %d: len = %d, want %d", i, len(b), len(arg)+1)
				}
				if b[len(b)-1] != 0 {
					t.Errorf("arg %d: missing NUL terminator", i)
				}
				if v.String(i) != arg {
					t.Errorf("arg %d = %q, want %q", i, v.String(i), arg)
				}
				size += len(arg) + 1
			}
			if v.Size() != size {
				t.Errorf("Size = %d, want %d", v.Size(), size)
			}
			if len(tt.args) > 0 && !reflect.DeepEqual(v.Strings(), tt.args) {
				t.Errorf("Strings = %q, want %q", v.Strings(), tt.args)
			}
		})
	}
}

func TestEncode_EmbeddedNUL(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		index int
	}{
		{name: "first", args: []string{"a\x00", "b"}, index: 0},
		{name: "middle", args: []string{"-o", "out\x00put", "a.o"}, index: 1},
		{name: "last", args: []string{"-o", "out", "\x00"}, index: 2},
		{name: "first of several", args: []string{"ok", "x\x00", "y\x00"}, index: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Encode(tt.args)
			if err == nil {
				t.Fatal("expected an encoding error")
			}
			if v.Len() != 0 {
				t.Errorf("vector should be empty on error, got %d", v.Len())
			}

			idx, ok := errors.ArgIndex(err)
			if !ok {
				t.Fatalf("ArgIndex failed for %v", err)
			}
			if idx != tt.index {
				t.Errorf("index = %d, want %d", idx, tt.index)
			}
			if !strings.Contains(err.Error(), errors.ArgPath(tt.index)) {
				t.Errorf("message %q should name %s", err.Error(), errors.ArgPath(tt.index))
			}
		})
	}
}

func TestEncode_OwnsBuffers(t *testing.T) {
	args := []string{"main.o"}
	v, err := Encode(args)
	if err != nil {
		t.Fatal(err)
	}
	args[0] = "other.o"
	if v.String(0) != "main.o" {
		t.Errorf("vector should not alias the input slice, got %q", v.String(0))
	}
}
