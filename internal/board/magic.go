package board

// Fancy magic bitboards for slider attacks. The magic multipliers are found
// at startup by random trial from a fixed seed, so the tables are
// deterministic without carrying 128 hardcoded constants.

type magicEntry struct {
	mask  Bitboard
	mul   uint64
	shift uint
	table []Bitboard
}

var (
	rookMagics   [64]magicEntry
	bishopMagics [64]magicEntry
)

var (
	rookDeltas   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDeltas = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// RookAttacks returns rook attacks from sq given board occupancy.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	m := &rookMagics[sq]
	return m.table[(uint64(occ&m.mask)*m.mul)>>m.shift]
}

// BishopAttacks returns bishop attacks from sq given board occupancy.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return m.table[(uint64(occ&m.mask)*m.mul)>>m.shift]
}

func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

// slidingAttacks walks each ray until it hits a blocker, blocker square
// included.
func slidingAttacks(sq Square, occ Bitboard, deltas [4][2]int) Bitboard {
	var att Bitboard
	for _, d := range deltas {
		f, r := int(sq.File())+d[0], int(sq.Rank())+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			s := MakeSquare(File(f), Rank(r))
			att.Set(s)
			if occ.Has(s) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return att
}

// slidingMask is the relevant-occupancy mask: ray squares whose occupancy
// changes the attack set, which excludes the terminal edge square of each
// ray.
func slidingMask(sq Square, deltas [4][2]int) Bitboard {
	var m Bitboard
	for _, d := range deltas {
		f, r := int(sq.File())+d[0], int(sq.Rank())+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			if nf, nr := f+d[0], r+d[1]; nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				m.Set(MakeSquare(File(f), Rank(r)))
			}
			f += d[0]
			r += d[1]
		}
	}
	return m
}

func initMagics() {
	rng := splitMix64(0xD6E81C2A45F3097B)
	for sq := A1; sq <= H8; sq++ {
		findMagic(&rookMagics[sq], sq, rookDeltas, &rng)
		findMagic(&bishopMagics[sq], sq, bishopDeltas, &rng)
	}
}

func findMagic(m *magicEntry, sq Square, deltas [4][2]int, rng *splitMix64) {
	m.mask = slidingMask(sq, deltas)
	bits := m.mask.Count()
	m.shift = uint(64 - bits)
	size := 1 << bits

	// Enumerate every subset of the mask with the carry-ripple trick and
	// precompute the reference attack sets.
	occs := make([]Bitboard, 0, size)
	refs := make([]Bitboard, 0, size)
	occ := Bitboard(0)
	for {
		occs = append(occs, occ)
		refs = append(refs, slidingAttacks(sq, occ, deltas))
		occ = (occ - m.mask) & m.mask
		if occ == 0 {
			break
		}
	}

	m.table = make([]Bitboard, size)
	used := make([]uint32, size)
	var epoch uint32
	for {
		// Sparse candidates converge much faster than uniform ones.
		mul := rng.next() & rng.next() & rng.next()
		if Bitboard(mul*uint64(m.mask)>>56).Count() < 6 {
			continue
		}
		epoch++
		ok := true
		for i, occ := range occs {
			idx := (uint64(occ) * mul) >> m.shift
			if used[idx] != epoch {
				used[idx] = epoch
				m.table[idx] = refs[i]
			} else if m.table[idx] != refs[i] {
				ok = false
				break
			}
		}
		if ok {
			m.mul = mul
			return
		}
	}
}
