package model

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Checkpoint format: a uint32 little-endian header length, a JSON-encoded
// Config, then every parameter tensor's float64 data dumped little-endian in
// Parameters() order.

// Save writes the model weights to path.
func (g *GPT) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close checkpoint file: %w", cerr)
		}
	}()

	configJSON, err := json.Marshal(g.config)
	if err != nil {
		return fmt.Errorf("failed to marshal model config: %w", err)
	}

	if err = binary.Write(f, binary.LittleEndian, uint32(len(configJSON))); err != nil {
		return fmt.Errorf("failed to write header length: %w", err)
	}
	if _, err = f.Write(configJSON); err != nil {
		return fmt.Errorf("failed to write model config: %w", err)
	}

	for i, p := range g.Parameters() {
		if err = binary.Write(f, binary.LittleEndian, p.data); err != nil {
			return fmt.Errorf("failed to write parameter %d: %w", i, err)
		}
	}

	return nil
}

// Load reads a checkpoint from path and reconstructs the model.
func Load(path string) (g *GPT, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close checkpoint file: %w", cerr)
		}
	}()

	var headerLen uint32
	if err = binary.Read(f, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("failed to read header length: %w", err)
	}

	configJSON := make([]byte, headerLen)
	if _, err = io.ReadFull(f, configJSON); err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}

	var config Config
	if err = json.Unmarshal(configJSON, &config); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid checkpoint config: %w", err)
	}

	g = NewGPT(config)
	for i, p := range g.Parameters() {
		if err = binary.Read(f, binary.LittleEndian, p.data); err != nil {
			return nil, fmt.Errorf("failed to read parameter %d: %w", i, err)
		}
	}

	return g, nil
}
