// Package loader provides program/data image loading for the MIPS-32
// simulator. Program/data loading is an explicit external collaborator
// of the timing core (see spec §1); this package's only obligation is
// to produce a flat instruction/data image the core's Memory can be
// seeded from, not to support any particular object file format.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// DefaultTextBase is the default load address for the instruction
// stream, matching the low end of the simulator's flat memory image.
const DefaultTextBase = 0x0

// DefaultDataBase is the default load address for the data image, far
// enough past a typical text segment to avoid accidental overlap in
// hand-assembled test programs.
const DefaultDataBase = 0x10000

// Program is a loaded MIPS-32 program ready for seeding into memory.
type Program struct {
	// EntryPoint is the address execution should begin at.
	EntryPoint uint32
	// TextBase is the address the instruction words are loaded at.
	TextBase uint32
	// Words holds the instruction stream, one 32-bit MIPS word per
	// entry, in program order starting at TextBase.
	Words []uint32
	// DataBase is the address the optional data image is loaded at.
	DataBase uint32
	// Data holds the raw initial data segment bytes, if any.
	Data []byte
}

// Load reads a flat binary image: a sequence of little-endian 32-bit
// MIPS instruction words. The entry point and text base are both
// DefaultTextBase.
func Load(path string) (*Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}

	words, err := decodeWords(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program image %s: %w", path, err)
	}

	return &Program{
		EntryPoint: DefaultTextBase,
		TextBase:   DefaultTextBase,
		Words:      words,
	}, nil
}

// LoadWithData reads a program image and an accompanying data image,
// the latter loaded at DefaultDataBase.
func LoadWithData(programPath, dataPath string) (*Program, error) {
	prog, err := Load(programPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data image: %w", err)
	}

	prog.DataBase = DefaultDataBase
	prog.Data = data
	return prog, nil
}

func decodeWords(raw []byte) ([]uint32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("image length %d is not a multiple of 4 bytes", len(raw))
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}
