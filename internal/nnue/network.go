// Package nnue implements the incrementally updated neural evaluator.
//
// The network sees the position twice, once from each side's perspective:
// 768 binary inputs (12 piece kinds on 64 squares, squares mirrored for
// black) feed a 256-wide hidden layer of int16 accumulators. The hidden
// layer is maintained incrementally as moves are made and unmade; only the
// small output layer runs per evaluation.
package nnue

import "github.com/mvander/riptide/internal/board"

const (
	InputSize  = 768
	HiddenSize = 256

	// Quantization constants. Hidden activations are clipped to [0, QA];
	// the output is descaled by QA*QB and rescaled to centipawns.
	QA    = 255
	QB    = 64
	Scale = 400
)

// Network holds the quantized weights. FeatureWeights is row-major by
// feature: the column for feature f starts at f*HiddenSize.
type Network struct {
	FeatureWeights [InputSize * HiddenSize]int16
	FeatureBias    [HiddenSize]int16
	OutputWeights  [2 * HiddenSize]int16
	OutputBias     int32
}

// Evaluate runs the output layer over the accumulator from stm's
// perspective and returns a centipawn score relative to stm.
func (n *Network) Evaluate(acc *Accumulator, stm board.Color) int {
	var sum int32
	own := &acc.Values[stm]
	opp := &acc.Values[stm.Other()]
	for i := 0; i < HiddenSize; i++ {
		sum += int32(clippedReLU(own[i])) * int32(n.OutputWeights[i])
	}
	for i := 0; i < HiddenSize; i++ {
		sum += int32(clippedReLU(opp[i])) * int32(n.OutputWeights[HiddenSize+i])
	}
	return int((int64(sum+n.OutputBias) * Scale) / (QA * QB))
}

func clippedReLU(v int16) int16 {
	if v < 0 {
		return 0
	}
	if v > QA {
		return QA
	}
	return v
}

// InitRandom fills the network with small deterministic pseudo-random
// weights. Tests use it so evaluator invariants can be checked without
// shipping a trained file.
func InitRandom(seed uint64) *Network {
	n := &Network{}
	s := seed
	next := func() int16 {
		s += 0x9E3779B97F4A7C15
		z := s
		z = (z ^ z>>30) * 0xBF58476D1CE4E5B9
		z = (z ^ z>>27) * 0x94D049BB133111EB
		z ^= z >> 31
		return int16(z%61) - 30
	}
	for i := range n.FeatureWeights {
		n.FeatureWeights[i] = next()
	}
	for i := range n.FeatureBias {
		n.FeatureBias[i] = next()
	}
	for i := range n.OutputWeights {
		n.OutputWeights[i] = next()
	}
	n.OutputBias = int32(next())
	return n
}
