package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the number of cycles each datapath stage takes and the
// optional instruction cache geometry.
type TimingConfig struct {
	// FetchLatency is the fetch latency without an instruction cache.
	// Default: 1 cycle.
	FetchLatency uint64 `json:"fetch_latency"`

	// DecodeLatency covers decode, control and register read. Default: 1 cycle.
	DecodeLatency uint64 `json:"decode_latency"`

	// ExecuteLatency is the ALU latency. Default: 1 cycle.
	ExecuteLatency uint64 `json:"execute_latency"`

	// MemoryLatency applies when the memory stage reads or writes data
	// memory. A pass-through memory stage always takes 1 cycle.
	// Default: 1 cycle.
	MemoryLatency uint64 `json:"memory_latency"`

	// WritebackLatency is the register write and PC update latency.
	// Default: 1 cycle.
	WritebackLatency uint64 `json:"writeback_latency"`

	// ICacheEnabled routes fetch timing through an instruction cache.
	ICacheEnabled bool `json:"icache_enabled"`

	// ICacheSize is the instruction cache size in bytes. Default: 1KB.
	ICacheSize int `json:"icache_size"`

	// ICacheAssociativity is the number of ways. Default: 2.
	ICacheAssociativity int `json:"icache_associativity"`

	// ICacheBlockSize is the line size in bytes. Default: 16.
	ICacheBlockSize int `json:"icache_block_size"`

	// ICacheHitLatency replaces FetchLatency on a hit. Default: 1 cycle.
	ICacheHitLatency uint64 `json:"icache_hit_latency"`

	// ICacheMissLatency replaces FetchLatency on a miss. Default: 10 cycles.
	ICacheMissLatency uint64 `json:"icache_miss_latency"`
}

// DefaultTimingConfig returns a TimingConfig where every stage takes one
// cycle and the instruction cache is disabled.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		FetchLatency:        1,
		DecodeLatency:       1,
		ExecuteLatency:      1,
		MemoryLatency:       1,
		WritebackLatency:    1,
		ICacheEnabled:       false,
		ICacheSize:          1024,
		ICacheAssociativity: 2,
		ICacheBlockSize:     16,
		ICacheHitLatency:    1,
		ICacheMissLatency:   10,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all stage latencies are > 0 and, when the
// instruction cache is enabled, that its geometry is consistent.
func (c *TimingConfig) Validate() error {
	if c.FetchLatency == 0 {
		return fmt.Errorf("fetch_latency must be > 0")
	}
	if c.DecodeLatency == 0 {
		return fmt.Errorf("decode_latency must be > 0")
	}
	if c.ExecuteLatency == 0 {
		return fmt.Errorf("execute_latency must be > 0")
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	if c.WritebackLatency == 0 {
		return fmt.Errorf("writeback_latency must be > 0")
	}

	if !c.ICacheEnabled {
		return nil
	}

	if c.ICacheSize <= 0 || c.ICacheAssociativity <= 0 || c.ICacheBlockSize <= 0 {
		return fmt.Errorf("icache size, associativity and block size must be > 0")
	}
	if c.ICacheBlockSize&(c.ICacheBlockSize-1) != 0 {
		return fmt.Errorf("icache_block_size must be a power of two")
	}
	if c.ICacheSize%(c.ICacheAssociativity*c.ICacheBlockSize) != 0 {
		return fmt.Errorf("icache_size must be a multiple of associativity * block size")
	}
	if c.ICacheHitLatency == 0 {
		return fmt.Errorf("icache_hit_latency must be > 0")
	}
	if c.ICacheHitLatency > c.ICacheMissLatency {
		return fmt.Errorf("icache_hit_latency must be <= icache_miss_latency")
	}

	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
