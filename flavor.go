package lld

import (
	"strconv"
	"strings"

	"github.com/wippyai/go-lld/errors"
)

// Flavor selects the object-format driver the entry point dispatches to.
// Values and width match the C enum LLDFlavor of the native shim.
type Flavor int32

const (
	ELF     Flavor = 0
	WASM    Flavor = 1
	MACHO   Flavor = 2
	COFF    Flavor = 3
	Generic Flavor = 4 // lldMain: flavor from -flavor or argv[0]
)

var flavorNames = [...]string{
	ELF:     "elf",
	WASM:    "wasm",
	MACHO:   "macho",
	COFF:    "coff",
	Generic: "generic",
}

// Flavors lists every defined flavor in ordinal order.
func Flavors() []Flavor {
	return []Flavor{ELF, WASM, MACHO, COFF, Generic}
}

// String returns the canonical lower-case name.
func (f Flavor) String() string {
	if f.Valid() {
		return flavorNames[f]
	}
	return "flavor(" + strconv.Itoa(int(f)) + ")"
}

// Valid reports whether f is one of the defined flavors.
func (f Flavor) Valid() bool {
	return f >= ELF && f <= Generic
}

// ParseFlavor maps a flavor or driver name to a Flavor.
// Driver aliases follow the names LLD itself accepts for -flavor.
func ParseFlavor(name string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "elf", "gnu", "ld.lld", "ld":
		return ELF, nil
	case "wasm", "wasm-ld":
		return WASM, nil
	case "macho", "mach-o", "darwin", "ld64", "ld64.lld":
		return MACHO, nil
	case "coff", "link", "lld-link", "windows":
		return COFF, nil
	case "generic", "auto", "lld", "":
		return Generic, nil
	}
	return 0, errors.InvalidFlavor(errors.PhaseConfig, name)
}
