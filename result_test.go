package lld

import (
	"errors"
	"testing"

	lldErrors "github.com/wippyai/go-lld/errors"
)

func TestResult_Err(t *testing.T) {
	tests := []struct {
		name     string
		res      Result
		wantErr  bool
		warnings string
	}{
		{name: "clean success", res: Result{Success: true}},
		{name: "success with warnings", res: Result{Success: true, Messages: "warning: x"}, warnings: "warning: x"},
		{name: "failure", res: Result{Flavor: COFF, Messages: "lld-link: error: no input files\n"}, wantErr: true},
		{name: "failure without diagnostics", res: Result{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.res.Err()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
			if got := tt.res.Warnings(); got != tt.warnings {
				t.Errorf("Warnings() = %q, want %q", got, tt.warnings)
			}
			if !tt.wantErr {
				return
			}
			var e *lldErrors.Error
			if !errors.As(err, &e) || e.Kind != lldErrors.KindLinkFailure {
				t.Fatalf("Err() = %v, want link failure", err)
			}
			if e.Flavor != tt.res.Flavor.String() {
				t.Errorf("flavor = %q", e.Flavor)
			}
		})
	}
}

func TestCopyMessages(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "ascii", in: []byte("ld.lld: error: x"), want: "ld.lld: error: x"},
		{name: "utf8 kept", in: []byte("файл.o"), want: "файл.o"},
		{name: "invalid replaced", in: []byte{'a', 0xff, 'b'}, want: "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]byte(nil), tt.in...)
			got := copyMessages(in)
			if got != tt.want {
				t.Errorf("copyMessages(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range in {
				in[i] = 0
			}
			if got != tt.want {
				t.Error("copy aliases the input")
			}
		})
	}
}
