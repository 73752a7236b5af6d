// Package loader reads MIPS programs from disk.
//
// Three file formats are understood: 32-bit big-endian MIPS ELF executables,
// raw binary images and hex text with one instruction word per line.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/mipsim/emu"
)

// ErrUnknownFormat is returned for a format name Load does not recognize.
var ErrUnknownFormat = errors.New("unknown program format")

// Format identifies a program file format.
type Format string

// Supported formats.
const (
	FormatAuto Format = "auto"
	FormatELF  Format = "elf"
	FormatBin  Format = "bin"
	FormatHex  Format = "hex"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatAuto, FormatELF, FormatBin, FormatHex:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a contiguous block of the program image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// End returns the first address past the segment in memory.
func (s Segment) End() uint64 {
	return s.VirtAddr + s.MemSize
}

// Program is a program image ready to be copied into memory.
type Program struct {
	// Entry is the address where execution begins.
	Entry uint64
	// Segments contains all loadable segments.
	Segments []Segment
}

// Load reads the program at path. FormatAuto picks ELF when the file starts
// with the ELF magic, hex text for .hex and .txt files and raw binary
// otherwise.
func Load(path string, format Format) (*Program, error) {
	if format == FormatAuto || format == "" {
		detected, err := detectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case FormatELF:
		return loadELF(path)
	case FormatBin:
		return loadBin(path)
	case FormatHex:
		return loadHex(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func detectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, 4)
	n, _ := f.Read(magic)
	if n == 4 && string(magic) == "\x7fELF" {
		return FormatELF, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		return FormatHex, nil
	default:
		return FormatBin, nil
	}
}

// CodeEnd returns the first address past the segment holding the entry
// point. Execution of a straight-line program finishes there.
func (p *Program) CodeEnd() uint64 {
	return p.CodeEndFrom(p.Entry)
}

// CodeEndFrom returns the first address past the segment holding addr, or
// addr itself when no segment holds it.
func (p *Program) CodeEndFrom(addr uint64) uint64 {
	for _, seg := range p.Segments {
		if addr >= seg.VirtAddr && addr < seg.VirtAddr+uint64(len(seg.Data)) {
			return seg.VirtAddr + uint64(len(seg.Data))
		}
	}
	return addr
}

// LoadInto copies every segment into mem and zero-fills the rest of each
// segment's memory size.
func (p *Program) LoadInto(mem *emu.Memory) error {
	for _, seg := range p.Segments {
		if err := mem.LoadProgram(seg.VirtAddr, seg.Data); err != nil {
			return fmt.Errorf("segment at 0x%x: %w", seg.VirtAddr, err)
		}

		fileSize := uint64(len(seg.Data))
		if seg.MemSize > fileSize {
			bss := make([]byte, seg.MemSize-fileSize)
			if err := mem.LoadProgram(seg.VirtAddr+fileSize, bss); err != nil {
				return fmt.Errorf("segment at 0x%x: %w", seg.VirtAddr, err)
			}
		}
	}
	return nil
}
