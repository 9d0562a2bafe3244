package wasmenc

// Instruction opcodes used by hand-written bodies.
const (
	OpBlock      byte = 0x02
	OpLoop       byte = 0x03
	OpIf         byte = 0x04
	OpEnd        byte = 0x0b
	OpBr         byte = 0x0c
	OpBrIf       byte = 0x0d
	OpReturn     byte = 0x0f
	OpCall       byte = 0x10
	OpLocalGet   byte = 0x20
	OpLocalSet   byte = 0x21
	OpLocalTee   byte = 0x22
	OpGlobalGet  byte = 0x23
	OpGlobalSet  byte = 0x24
	OpI32Load    byte = 0x28
	OpI32Load8U  byte = 0x2d
	OpI32Store   byte = 0x36
	OpI32Store8  byte = 0x3a
	OpI32Const   byte = 0x41
	OpI32Eqz     byte = 0x45
	OpI32Ne      byte = 0x47
	OpI32Add     byte = 0x6a
	OpI32Sub     byte = 0x6b
	OpI32And     byte = 0x71
	OpI32Shl     byte = 0x74
	OpMiscPrefix byte = 0xfc

	BlockTypeEmpty byte = 0x40

	// MiscMemoryCopy follows OpMiscPrefix; two memory indices follow it.
	MiscMemoryCopy byte = 0x0a
)

// Section ids.
const (
	sectionType     byte = 0x01
	sectionFunction byte = 0x03
	sectionMemory   byte = 0x05
	sectionGlobal   byte = 0x06
	sectionExport   byte = 0x07
	sectionCode     byte = 0x0a
)

// Export kinds.
const (
	exportFunc   byte = 0x00
	exportMemory byte = 0x02
	exportGlobal byte = 0x03
)
