package reactor

import (
	"io"
	"io/fs"

	"github.com/tetratelabs/wazero"
)

// Module exports
const (
	// ExportLink is the entry point.
	// Signature: link_with_lld(out: i32, flavor: i32, argc: i32, argv: i32)
	ExportLink = "link_with_lld"

	// ExportRelease frees the diagnostic buffer of a record.
	// Signature: lld_free(rec: i32)
	ExportRelease = "lld_free"

	// ExportMalloc allocates memory in linear memory.
	// Signature: malloc(size: i32) -> i32
	ExportMalloc = "malloc"

	// ExportFree frees memory in linear memory.
	// Signature: free(ptr: i32)
	ExportFree = "free"

	// ExportInitialize is the optional reactor initializer.
	ExportInitialize = "_initialize"
)

// LLDInvokeResult layout in wasm32 memory.
const (
	RecordSize           = 8
	recordSuccessOffset  = 0
	recordMessagesOffset = 4
)

// Config holds configuration for creating a Reactor.
type Config struct {
	// Stdout receives the guest's standard output. Default: discard.
	Stdout io.Writer
	// Stderr receives the guest's standard error. Default: discard.
	Stderr io.Writer
	// FS is mounted at "/" for the guest. Ignored when FSConfig or Dir is set.
	FS fs.FS
	// FSConfig is used as is when set.
	FSConfig wazero.FSConfig
	// Name is the wazero module name. Empty keeps the module anonymous so
	// several reactors can share one runtime.
	Name string
	// Dir is a host directory mounted read-write at "/". Ignored when
	// FSConfig is set.
	Dir string
	// Module is the compiled linker module. Required.
	Module []byte
	// MemoryLimitPages caps guest memory when the Reactor creates its own
	// runtime. 0 means the wazero default.
	MemoryLimitPages uint32
}

func (c *Config) moduleConfig() wazero.ModuleConfig {
	modCfg := wazero.NewModuleConfig().
		WithName(c.Name).
		WithStartFunctions()

	if c.Stdout != nil {
		modCfg = modCfg.WithStdout(c.Stdout)
	}
	if c.Stderr != nil {
		modCfg = modCfg.WithStderr(c.Stderr)
	}

	switch {
	case c.FSConfig != nil:
		modCfg = modCfg.WithFSConfig(c.FSConfig)
	case c.Dir != "":
		modCfg = modCfg.WithFSConfig(wazero.NewFSConfig().WithDirMount(c.Dir, "/"))
	case c.FS != nil:
		modCfg = modCfg.WithFSConfig(wazero.NewFSConfig().WithFSMount(c.FS, "/"))
	}
	return modCfg
}
