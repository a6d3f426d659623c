// Package constants holds the wire-format and CLI constants shared across
// HyperCrypt's packages: LFSR bit-width bounds, AES/segment sizes, the key
// descriptor's tag names and version, and file naming conventions.
package constants

const (
	// MinBits and MaxBits bound the LFSR bit-width b, giving segment output
	// sizes of 2^b bytes.
	MinBits = 15
	MaxBits = 28

	// MinSize and MaxSize are the smallest and largest segment output sizes.
	MinSize = 1 << MinBits
	MaxSize = 1 << MaxBits

	// ChunkSize is the fixed AES-CBC chunk size the segment codec operates on.
	ChunkSize = 256

	// KeySize and IVSize are the AES-256 key and CBC IV sizes in bytes.
	KeySize = 32
	IVSize  = 16

	// KeyVersion is the wire version tag written to every key descriptor,
	// rendered as 8 uppercase hex digits.
	KeyVersion uint32 = 0x00010000

	// CryptoScheme is the literal scheme tag recorded in every Segment's
	// Crypto block.
	CryptoScheme = "AES-256"

	// MaxSplits is the largest number of output/input files a single
	// encrypt/decrypt run may use.
	MaxSplits = 16

	// KeyFileExt and CiphertextExt are the output file suffixes.
	KeyFileExt    = ".hckey"
	CiphertextExt = ".hc"

	// TempSuffix is appended to a random name to produce a temp file name.
	TempSuffix = "-hctemp"
)

// Key descriptor element names. Part of the on-wire contract: attribute
// order is not significant, but these names are.
const (
	TagRoot         = "HyperCryptKey"
	TagVersion      = "version"
	TagSegments     = "Segments"
	TagSegment      = "Segment"
	TagInSize       = "in_size"
	TagOutSize      = "out_size"
	TagLFSR         = "lfsr"
	TagCrypto       = "Crypto"
	TagCryptoScheme = "scheme"
	TagCryptoIV     = "iv"
	TagCryptoKey    = "key"
)

// HelpText is the full CLI usage text printed when hypercrypt is invoked
// with no arguments or a bad flag combination.
const HelpText = `
NAME
    hypercrypt - encrypts and decrypts files with AES-256-CBC layered under
    a per-segment LFSR byte permutation.

SYNOPSIS
    Encrypt:          hypercrypt -e <file>
    Encrypt & split:  hypercrypt -e -s <splits> <file>
    Decrypt:          hypercrypt -d <keyfile>
    Decrypt & join:   hypercrypt -d -j <joins> <keyfile>

DESCRIPTION
    hypercrypt partitions the input file into power-of-two-sized segments,
    encrypts each with its own AES-256 key under CBC, and scrambles each
    segment's ciphertext bytes with a maximal-length Galois LFSR before
    writing it out. A sidecar key file (<file>.hckey) records everything
    needed to reverse the transform; it is not itself encrypted.

EXAMPLES
    hypercrypt -e data.bin
        produces data.bin.hckey and data.bin.hc

    hypercrypt -e -s 4 data.bin
        produces data.bin.hckey, data.bin.01.hc .. data.bin.04.hc

    hypercrypt -d data.bin.hckey
        produces data.bin

    hypercrypt -d -j 4 data.bin.hckey
        reads data.bin.01.hc .. data.bin.04.hc, produces data.bin
`
