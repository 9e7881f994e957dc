package search

import (
	"sync/atomic"

	"github.com/mvander/riptide/internal/board"
)

// Transposition table. Entries are a pair of 64-bit words per slot: the
// packed payload and the position hash XORed with that payload. Readers
// and writers use plain atomic loads and stores with no locking; a racing
// write makes the XOR check fail and the probe miss, so a torn
// score/bound pair can never be observed. Lost and stale writes are
// acceptable, wrong payloads are not.

type Bound uint8

const (
	BoundNone  Bound = 0
	BoundUpper Bound = 1 // score is at most the true value
	BoundLower Bound = 2 // score is at least the true value
	BoundExact Bound = 3
)

// Entry is an unpacked table payload.
type Entry struct {
	Move  board.Move
	Score int16
	Depth int8
	Bound Bound
}

// Payload packing:
//
//	bits  0-15  move
//	bits 16-31  score (int16)
//	bits 32-39  depth (int8)
//	bits 40-41  bound
//	bits 48-55  generation
type slot struct {
	check atomic.Uint64 // hash ^ data
	data  atomic.Uint64
}

type Table struct {
	slots []slot
	mask  uint64
	gen   uint8
}

const slotBytes = 16

// NewTable allocates a table of the given size in MiB, rounded down to a
// power of two slots. The table never grows or shrinks mid-search.
func NewTable(sizeMB int) *Table {
	if sizeMB < 1 {
		sizeMB = 1
	}
	n := uint64(sizeMB) * 1024 * 1024 / slotBytes
	for n&(n-1) != 0 {
		n &= n - 1 // keep the highest bit
	}
	return &Table{slots: make([]slot, n), mask: n - 1}
}

// Clear wipes every entry and resets the generation. Called on new games,
// never during a search.
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i].check.Store(0)
		t.slots[i].data.Store(0)
	}
	t.gen = 0
}

// NextGeneration ages the table before a new search so old entries lose
// their replacement priority.
func (t *Table) NextGeneration() {
	t.gen++
}

func pack(e Entry, gen uint8) uint64 {
	return uint64(e.Move) |
		uint64(uint16(e.Score))<<16 |
		uint64(uint8(e.Depth))<<32 |
		uint64(e.Bound)<<40 |
		uint64(gen)<<48
}

func unpack(d uint64) Entry {
	return Entry{
		Move:  board.Move(d),
		Score: int16(d >> 16),
		Depth: int8(d >> 32),
		Bound: Bound(d >> 40 & 3),
	}
}

func dataGen(d uint64) uint8  { return uint8(d >> 48) }
func dataDepth(d uint64) int8 { return int8(d >> 32) }

// Probe returns the entry stored for hash, if any.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	s := &t.slots[hash&t.mask]
	check, data := s.check.Load(), s.data.Load()
	if data == 0 || check^data != hash {
		return Entry{}, false
	}
	return unpack(data), true
}

// Store writes an entry for hash. Depth-preferred within the current
// generation: an incumbent from this generation with strictly greater
// depth survives, unless the new entry is for the same position.
func (t *Table) Store(hash uint64, e Entry) {
	s := &t.slots[hash&t.mask]
	check, data := s.check.Load(), s.data.Load()
	if data != 0 && check^data != hash &&
		dataGen(data) == t.gen && dataDepth(data) > e.Depth {
		return
	}
	d := pack(e, t.gen)
	s.check.Store(hash ^ d)
	s.data.Store(d)
}

// HashFull estimates table saturation in permille by sampling.
func (t *Table) HashFull() int {
	n := 1000
	if len(t.slots) < n {
		n = len(t.slots)
	}
	used := 0
	for i := 0; i < n; i++ {
		if d := t.slots[i].data.Load(); d != 0 && dataGen(d) == t.gen {
			used++
		}
	}
	return used * 1000 / n
}

// Mate scores are stored relative to the probing node, not the root, so a
// hit at a different ply still means "mate in k from here".

func scoreToTT(score, ply int) int16 {
	if score > mateBound {
		score += ply
	} else if score < -mateBound {
		score -= ply
	}
	return int16(score)
}

func scoreFromTT(score int16, ply int) int {
	s := int(score)
	if s > mateBound {
		s -= ply
	} else if s < -mateBound {
		s += ply
	}
	return s
}
