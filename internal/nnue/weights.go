package nnue

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// Binary weights file layout, all little-endian:
//
//	header: magic, version, input size, hidden size (uint32 each)
//	FeatureBias, FeatureWeights, OutputWeights (int16)
//	OutputBias (int32)
const (
	weightsMagic   uint32 = 0x4E545052 // "RPTN"
	weightsVersion uint32 = 1
)

type fileHeader struct {
	Magic   uint32
	Version uint32
	Input   uint32
	Hidden  uint32
}

// Load reads a weights file. Any defect, from a missing file to a
// truncated tensor, is an error; the engine refuses to run on a bad
// network rather than fall back silently.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var h fileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("nnue: %s: reading header: %w", path, err)
	}
	if h.Magic != weightsMagic {
		return nil, fmt.Errorf("nnue: %s: bad magic %#x, not a weights file", path, h.Magic)
	}
	if h.Version != weightsVersion {
		return nil, fmt.Errorf("nnue: %s: version %d, want %d", path, h.Version, weightsVersion)
	}
	if h.Input != InputSize || h.Hidden != HiddenSize {
		return nil, fmt.Errorf("nnue: %s: architecture %dx%d, this build wants %dx%d",
			path, h.Input, h.Hidden, InputSize, HiddenSize)
	}

	n := &Network{}
	for _, tensor := range []any{
		&n.FeatureBias, &n.FeatureWeights, &n.OutputWeights, &n.OutputBias,
	} {
		if err := binary.Read(r, binary.LittleEndian, tensor); err != nil {
			return nil, fmt.Errorf("nnue: %s: truncated weights: %w", path, err)
		}
	}
	return n, nil
}

// Save writes the network in the format Load reads. Used by training and
// test tooling.
func (n *Network) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nnue: %w", err)
	}
	w := bufio.NewWriter(f)

	h := fileHeader{Magic: weightsMagic, Version: weightsVersion, Input: InputSize, Hidden: HiddenSize}
	for _, tensor := range []any{
		h, n.FeatureBias, n.FeatureWeights, n.OutputWeights, n.OutputBias,
	} {
		if err := binary.Write(w, binary.LittleEndian, tensor); err != nil {
			f.Close()
			return fmt.Errorf("nnue: writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("nnue: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("nnue: writing %s: %w", path, err)
	}
	return nil
}
