package loader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const rawFlags = SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute

func rawProgram(data []byte) *Program {
	return &Program{
		Entry: 0,
		Segments: []Segment{{
			VirtAddr: 0,
			Data:     data,
			MemSize:  uint64(len(data)),
			Flags:    rawFlags,
		}},
	}
}

// loadBin reads a raw image of big-endian words, loaded at address 0.
func loadBin(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("binary size %d is not a multiple of 4", len(data))
	}

	return rawProgram(data), nil
}

// loadHex reads one 32-bit hex word per line, loaded at address 0. Blank
// lines and text after '#' are ignored; a 0x prefix is optional.
func loadHex(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var data []byte
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		digits := strings.TrimPrefix(strings.TrimPrefix(line, "0x"), "0X")
		word, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid instruction word %q", lineNo, line)
		}

		data = binary.BigEndian.AppendUint32(data, uint32(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex file: %w", err)
	}

	return rawProgram(data), nil
}
