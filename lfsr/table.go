package lfsr

import "github.com/vilshansen/hypercrypt/constants"

// rawPolyTable holds, for each bit-width b in [constants.MinBits,
// constants.MaxBits], the literal primitive-polynomial tap masks the
// registered variants are derived from. These masks are part of the
// on-wire contract: a key descriptor's lfsr field only round-trips to the
// same permutation if encode and decode agree on this table, so the values
// are not re-derived from first principles — they are the same masks the
// reference HyperCrypt implementation ships.
var rawPolyTable = [][]uint32{
	// 15 bits
	{0x00008423, 0x0000900B, 0x00008437, 0x000088C7, 0x000080CF, 0x0000FFFD, 0x00008729, 0x0000903D, 0x00008431, 0x000099D5, 0x000086A9},
	// 16 bits
	{0x0001100B, 0x000138CB, 0x000136C3, 0x00018E47, 0x00018F57, 0x00018CEF, 0x000103DD, 0x00017481, 0x0001450B, 0x0001706D, 0x0001846F, 0x00011085, 0x00018BB7, 0x00013C47},
	// 17 bits
	{0x0002000F, 0x00020119, 0x0002AAA9, 0x0002104F, 0x000201D9, 0x000212DD, 0x000248AF, 0x0003000B, 0x0002076D, 0x0002AAD7, 0x0002123F},
	// 18 bits
	{0x000404A1, 0x00048025, 0x00040107, 0x00040609, 0x00042051, 0x00048205, 0x0004003F, 0x000402F1, 0x00040377, 0x000403D7, 0x000405FF},
	// 19 bits
	{0x00080027, 0x000801A1, 0x00080321, 0x00080047, 0x0008003F, 0x0008006F, 0x0008007D, 0x000800AF, 0x000801BF, 0x000801DF, 0x0008036F, 0x0008039F, 0x00080BFD, 0x00080DBF},
	// 20 bits
	{0x00100229, 0x0010094D, 0x00180019, 0x0012449D},
	// 21 bits
	{0x00204085, 0x00202025, 0x002040CD, 0x0020019D, 0x0020863D, 0x002050DD, 0x0020045D, 0x003C003D},
	// 22 bits
	{0x00400223, 0x00550057, 0x00420287, 0x00423187, 0x0040708F},
	// 23 bits
	{0x00820821, 0x00800033, 0x00801031, 0x00A000A1, 0x00812069, 0x00800CE1, 0x00820B33, 0x008086B9, 0x00852925},
	// 24 bits
	{0x01000087, 0x01554BB1, 0x012FE633},
	// 25 bits
	{0x0200000F, 0x02100029, 0x02001019, 0x0202040F, 0x02A802A9, 0x02041879, 0x0211082F, 0x02000B5D, 0x020019D9},
	// 26 bits
	{0x04000047, 0x04611D3B, 0x0409EBED, 0x04592BB7, 0x052368D3, 0x04ECEF65, 0x0425BB79},
	// 27 bits
	{0x08000027, 0x08040E39, 0x08402879, 0x0909118F, 0x0AA02BEF, 0x0ABD4599, 0x0842E043, 0x09292A79},
	// 28 bits
	{0x11111119, 0x10002A29, 0x10400C19, 0x100A844D, 0x10070239},
}

// buildVariants expands rawPolyTable[i] into the registered variant
// list for that bit-width: for each literal mask, in order, the
// right-shifted form is registered first, then the bit-reversed-within-b
// form. This doubling and ordering is deliberate and must be reproduced
// bit-for-bit for descriptors to stay compatible.
func buildVariants(literals []uint32, bits uint) []uint32 {
	variants := make([]uint32, 0, len(literals)*2)
	for _, m := range literals {
		variants = append(variants, m>>1)
		variants = append(variants, reverseBits(m, bits))
	}
	return variants
}

// reverseBits reverses the low `bits` bits of m.
func reverseBits(m uint32, bits uint) uint32 {
	var r uint32
	for j := uint(0); j < bits; j++ {
		r <<= 1
		if m&(1<<j) != 0 {
			r |= 1
		}
	}
	return r
}

// polyTable is the immutable, process-wide registry of (bit-width ->
// variant list), built once in init(). Unlike the reference
// implementation's lazily-initialized mutable global, this table is built
// eagerly at package load and never mutated afterward — there is no
// data race to guard against and no explicit "preload" call is needed.
var polyTable [][]uint32

func init() {
	polyTable = make([][]uint32, len(rawPolyTable))
	for i, literals := range rawPolyTable {
		polyTable[i] = buildVariants(literals, uint(constants.MinBits+i))
	}
}

// variantsFor returns the registered polynomial variants for the given
// bit-width, or nil if bits is out of [MinBits, MaxBits].
func variantsFor(bits uint) []uint32 {
	if bits < constants.MinBits || bits > constants.MaxBits {
		return nil
	}
	return polyTable[bits-constants.MinBits]
}
