package entropy

import "math"

// LPSTable gives the size of the least-probable-symbol sub-interval for
// a context in state LPSTable[state], quantized against one of four
// representative range values selected by (range>>6)&3 (encoder) or
// (range>>6)-4 (decoder) — the two expressions agree whenever range is
// kept in its required [256,512) window. This is the classic CABAC
// rangeTabLPS table; every entry is part of the wire format and must
// not be altered.
var LPSTable = [64][4]uint32{
	{128, 176, 208, 240},
	{128, 167, 197, 227},
	{128, 158, 187, 216},
	{123, 150, 178, 205},
	{116, 142, 169, 195},
	{111, 135, 160, 185},
	{105, 128, 152, 175},
	{100, 122, 144, 166},
	{95, 116, 137, 158},
	{90, 110, 130, 150},
	{85, 104, 123, 142},
	{81, 99, 117, 135},
	{77, 94, 111, 128},
	{73, 89, 105, 122},
	{69, 85, 100, 116},
	{66, 80, 95, 110},
	{62, 76, 90, 104},
	{59, 72, 86, 99},
	{56, 69, 81, 94},
	{53, 65, 77, 89},
	{51, 62, 73, 85},
	{48, 59, 69, 80},
	{46, 56, 66, 76},
	{43, 53, 63, 72},
	{41, 50, 59, 69},
	{39, 48, 56, 65},
	{37, 45, 54, 62},
	{35, 43, 51, 59},
	{33, 41, 48, 56},
	{32, 39, 46, 53},
	{30, 37, 43, 50},
	{29, 35, 41, 48},
	{27, 33, 39, 45},
	{26, 31, 37, 43},
	{24, 30, 35, 41},
	{23, 28, 33, 39},
	{22, 27, 32, 37},
	{21, 26, 30, 35},
	{20, 24, 29, 33},
	{19, 23, 27, 31},
	{18, 22, 26, 30},
	{17, 21, 25, 28},
	{16, 20, 23, 27},
	{15, 19, 22, 25},
	{14, 18, 21, 24},
	{14, 17, 20, 23},
	{13, 16, 19, 22},
	{12, 15, 18, 21},
	{12, 14, 17, 20},
	{11, 14, 16, 19},
	{11, 13, 15, 18},
	{10, 12, 15, 17},
	{10, 12, 14, 16},
	{9, 11, 13, 15},
	{9, 11, 12, 14},
	{8, 10, 12, 14},
	{8, 9, 11, 13},
	{7, 9, 11, 12},
	{7, 9, 10, 12},
	{7, 8, 10, 11},
	{6, 8, 9, 11},
	{6, 7, 9, 10},
	{6, 7, 8, 9},
	{2, 2, 2, 2},
}

// RenormTable is indexed by LPS>>3 and gives the number of renormalizing
// left-shifts (equivalently, leading zero count relative to the 9-bit
// LPS window) needed after an LPS is coded. Part of the wire format.
var RenormTable = [32]uint32{
	6, 5, 4, 4,
	3, 3, 3, 3,
	2, 2, 2, 2,
	2, 2, 2, 2,
	1, 1, 1, 1,
	1, 1, 1, 1,
	1, 1, 1, 1,
	1, 1, 1, 1,
}

// transIdxMPS and transIdxLPS are the canonical 64-entry CABAC state
// machine transitions, depending only on the state index, never on the
// MPS bit: coding an MPS nudges the state toward more confidence
// (higher index, saturating at 62; state 63 only maps to itself); coding
// an LPS backs off toward less
// confidence (lower index), except that the two weakest states (0, 1)
// loop back near themselves without fully resetting.
var transIdxMPS = [64]uint8{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
	33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48,
	49, 50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 62, 63,
}

var transIdxLPS = [64]uint8{
	0, 0, 1, 2, 2, 4, 4, 5, 6, 7, 8, 9, 9, 11, 11, 12,
	13, 13, 15, 15, 16, 16, 18, 18, 19, 19, 21, 21, 22, 22, 23, 24,
	24, 25, 26, 26, 27, 27, 28, 29, 29, 30, 30, 30, 31, 32, 32, 33,
	33, 33, 34, 34, 35, 35, 35, 36, 36, 36, 37, 37, 37, 38, 38, 63,
}

// NextStateMPS and NextStateLPS are the packed-state renderings of
// transIdxMPS/transIdxLPS: indexed by packed state (state<<1)|mps, each
// entry gives the new state index. The transition never depends on the
// MPS bit itself — updateMPS/updateLPS only ever flip the MPS bit as a
// separate step, for state 0 on an LPS — so both parities of a given
// state index map to the same transIdxMPS/transIdxLPS entry. The
// 128-entry shape matches the wire contract's packed-state addressing
// even though the values are a direct function of the unpacked table.
var NextStateMPS = buildPackedTransition(transIdxMPS)
var NextStateLPS = buildPackedTransition(transIdxLPS)

func buildPackedTransition(t [64]uint8) [128]uint8 {
	var packed [128]uint8
	for state := 0; state < 64; state++ {
		packed[state<<1] = t[state]
		packed[state<<1|1] = t[state]
	}
	return packed
}

// LPSProbTable is the optional fixed-probability extension's LPS table,
// indexed [|pct-50|-1][(range>>6)&3]. Only used when fixed-probability
// coding (encodeBinProb/decodeBinProb) is exercised; part of that
// extension's wire format.
var LPSProbTable = [49][4]uint32{
	{139, 171, 202, 234},
	{136, 167, 198, 229},
	{134, 164, 194, 224},
	{131, 160, 190, 220},
	{128, 157, 186, 215},
	{125, 153, 182, 210},
	{122, 150, 178, 205},
	{119, 146, 174, 201},
	{116, 143, 169, 196},
	{114, 139, 165, 191},
	{111, 136, 161, 186},
	{108, 132, 157, 181},
	{105, 129, 153, 177},
	{102, 126, 149, 172},
	{99, 122, 145, 167},
	{97, 119, 140, 162},
	{94, 115, 136, 158},
	{91, 112, 132, 153},
	{88, 108, 128, 148},
	{85, 105, 124, 143},
	{82, 101, 120, 138},
	{80, 98, 116, 134},
	{77, 94, 112, 129},
	{74, 91, 107, 124},
	{71, 87, 103, 119},
	{68, 84, 99, 115},
	{65, 80, 95, 110},
	{62, 77, 91, 105},
	{60, 73, 87, 100},
	{57, 70, 83, 95},
	{54, 66, 78, 91},
	{51, 63, 74, 86},
	{48, 59, 70, 81},
	{45, 56, 66, 76},
	{43, 52, 62, 72},
	{40, 49, 58, 67},
	{37, 45, 54, 62},
	{34, 42, 50, 57},
	{31, 38, 45, 53},
	{28, 35, 41, 48},
	{26, 31, 37, 43},
	{23, 28, 33, 38},
	{20, 24, 29, 33},
	{17, 21, 25, 29},
	{14, 17, 21, 24},
	{11, 14, 17, 19},
	{9, 10, 12, 14},
	{6, 7, 8, 10},
	{4, 4, 4, 5},
}

// EntropyBits[packedState] estimates, in 1/256-bit fixed point, the cost
// of coding a bin against packedState. It is consulted only by
// Context.EntropyBits for caller-side statistics and never feeds back
// into the coded bitstream, so unlike the tables above its exact values
// are not part of the wire contract. It is derived rather than
// transcribed: for each state the LPS probability is read off column 2
// of LPSTable (the range≈384 entry, representative of the coder's
// typical operating point) and turned into a bit cost via -log2(p).
var EntropyBits [128]uint16

func init() {
	const fixedPointScale = 256.0
	for state := 0; state < 64; state++ {
		pLPS := float64(LPSTable[state][2]) / 384.0
		if pLPS <= 0 {
			pLPS = 1e-6
		}
		if pLPS >= 1 {
			pLPS = 1 - 1e-6
		}
		pMPS := 1 - pLPS

		mpsBits := -math.Log2(pMPS) * fixedPointScale
		lpsBits := -math.Log2(pLPS) * fixedPointScale

		EntropyBits[state<<1] = clampUint16(mpsBits)
		EntropyBits[state<<1|1] = clampUint16(lpsBits)
	}
}

func clampUint16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}
