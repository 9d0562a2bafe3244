package lld

import (
	"errors"
	"testing"

	lldErrors "github.com/wippyai/go-lld/errors"
)

func TestFlavor_Ordinals(t *testing.T) {
	// Must stay in sync with enum LLDFlavor in native/lld_shim.h.
	want := map[Flavor]int32{ELF: 0, WASM: 1, MACHO: 2, COFF: 3, Generic: 4}
	for f, v := range want {
		if int32(f) != v {
			t.Errorf("%s = %d, want %d", f, int32(f), v)
		}
	}
}

func TestFlavor_String(t *testing.T) {
	tests := []struct {
		f    Flavor
		want string
	}{
		{ELF, "elf"},
		{WASM, "wasm"},
		{MACHO, "macho"},
		{COFF, "coff"},
		{Generic, "generic"},
		{Flavor(9), "flavor(9)"},
		{Flavor(-1), "flavor(-1)"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int32(tt.f), got, tt.want)
		}
	}
}

func TestParseFlavor(t *testing.T) {
	tests := []struct {
		name string
		want Flavor
	}{
		{"elf", ELF},
		{"ld.lld", ELF},
		{"GNU", ELF},
		{"wasm-ld", WASM},
		{"ld64.lld", MACHO},
		{"darwin", MACHO},
		{"lld-link", COFF},
		{" coff ", COFF},
		{"auto", Generic},
		{"", Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlavor(tt.name)
			if err != nil {
				t.Fatalf("ParseFlavor(%q): %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseFlavor(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}

	_, err := ParseFlavor("pe32")
	if !errors.Is(err, &lldErrors.Error{Phase: lldErrors.PhaseConfig, Kind: lldErrors.KindInvalidFlavor}) {
		t.Errorf("ParseFlavor(pe32) error = %v", err)
	}
}

func TestFlavors_RoundTrip(t *testing.T) {
	for _, f := range Flavors() {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
		got, err := ParseFlavor(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFlavor(%q) = %s, %v", f.String(), got, err)
		}
	}
}
