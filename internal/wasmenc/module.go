package wasmenc

import (
	"github.com/tetratelabs/wazero/api"
)

// ModuleBuilder builds a self-contained module: no imports, one memory,
// mutable i32 globals and functions with caller-supplied bodies.
type ModuleBuilder struct {
	memoryExport string
	funcs        []moduleFunc
	globals      []moduleGlobal
	memoryPages  uint32
}

type moduleFunc struct {
	export      string
	paramTypes  []api.ValueType
	resultTypes []api.ValueType
	localTypes  []api.ValueType
	body        []byte
}

type moduleGlobal struct {
	export    string
	initValue int32
}

// NewModuleBuilder creates an empty builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{}
}

// SetMemory declares the module's memory with a minimum size in 64KiB pages.
// An empty export name keeps the memory private.
func (b *ModuleBuilder) SetMemory(export string, pages uint32) {
	b.memoryExport = export
	b.memoryPages = pages
}

// AddGlobal adds a mutable i32 global and returns its index.
// An empty export name keeps it private.
func (b *ModuleBuilder) AddGlobal(export string, initValue int32) uint32 {
	b.globals = append(b.globals, moduleGlobal{export: export, initValue: initValue})
	return uint32(len(b.globals) - 1)
}

// AddFunc adds a function and returns its index. body holds the
// instructions without the local declarations and without the final end.
func (b *ModuleBuilder) AddFunc(export string, params, results, locals []api.ValueType, body []byte) uint32 {
	b.funcs = append(b.funcs, moduleFunc{
		export:      export,
		paramTypes:  params,
		resultTypes: results,
		localTypes:  locals,
		body:        body,
	})
	return uint32(len(b.funcs) - 1)
}

// Build generates the WASM module bytes.
func (b *ModuleBuilder) Build() []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionType, b.buildTypeSection())
		wasm = appendSection(wasm, sectionFunction, b.buildFuncSection())
	}
	if b.memoryPages > 0 {
		wasm = appendSection(wasm, sectionMemory, b.buildMemorySection())
	}
	if len(b.globals) > 0 {
		wasm = appendSection(wasm, sectionGlobal, b.buildGlobalSection())
	}
	wasm = appendSection(wasm, sectionExport, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, sectionCode, b.buildCodeSection())
	}

	return wasm
}

// One type per function; duplicates are valid and keep indices aligned.
func (b *ModuleBuilder) buildTypeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)

	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(f.paramTypes)))...)
		for _, t := range f.paramTypes {
			section = append(section, ValTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(f.resultTypes)))...)
		for _, t := range f.resultTypes {
			section = append(section, ValTypeToWasm(t))
		}
	}

	return section
}

func (b *ModuleBuilder) buildFuncSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *ModuleBuilder) buildMemorySection() []byte {
	var section []byte
	section = append(section, 0x01)
	section = append(section, 0x00) // min only
	section = append(section, EncodeULEB128(b.memoryPages)...)
	return section
}

func (b *ModuleBuilder) buildGlobalSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.globals)))...)
	for _, g := range b.globals {
		section = append(section, ValTypeToWasm(api.ValueTypeI32), 0x01)
		section = append(section, OpI32Const)
		section = append(section, EncodeSLEB128(g.initValue)...)
		section = append(section, OpEnd)
	}
	return section
}

func (b *ModuleBuilder) buildExportSection() []byte {
	var entries []byte
	count := 0

	if b.memoryPages > 0 && b.memoryExport != "" {
		entries = appendName(entries, b.memoryExport)
		entries = append(entries, exportMemory, 0x00)
		count++
	}

	for i, g := range b.globals {
		if g.export == "" {
			continue
		}
		entries = appendName(entries, g.export)
		entries = append(entries, exportGlobal)
		entries = append(entries, EncodeULEB128(uint32(i))...)
		count++
	}

	for i, f := range b.funcs {
		if f.export == "" {
			continue
		}
		entries = appendName(entries, f.export)
		entries = append(entries, exportFunc)
		entries = append(entries, EncodeULEB128(uint32(i))...)
		count++
	}

	section := EncodeULEB128(uint32(count))
	return append(section, entries...)
}

func (b *ModuleBuilder) buildCodeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)

	for _, f := range b.funcs {
		funcBody := buildFuncBody(f)
		section = append(section, EncodeULEB128(uint32(len(funcBody)))...)
		section = append(section, funcBody...)
	}

	return section
}

func buildFuncBody(f moduleFunc) []byte {
	var body []byte
	body = append(body, EncodeULEB128(uint32(len(f.localTypes)))...)
	for _, t := range f.localTypes {
		body = append(body, 0x01, ValTypeToWasm(t))
	}
	body = append(body, f.body...)
	body = append(body, OpEnd)
	return body
}
