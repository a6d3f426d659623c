package segment

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/vilshansen/hypercrypt/constants"
	"github.com/vilshansen/hypercrypt/lfsr"
)

// Encrypt transforms plaintext (exactly k.InSize bytes) into a k.OutSize
// ciphertext buffer. The working buffer is pre-filled with random bytes
// when OutSize exceeds InSize, so unwritten positions never leak stack
// content. Plaintext is then consumed chunk_size=256 bytes at a time
// (the tail of a short last chunk padded with random bytes), AES-CBC
// encrypted in place chained across the segment, and each chunk's bytes
// scattered to positions drawn from the segment's LFSR. Only the chunks
// needed to cover InSize are processed; a residual segment's OutSize may
// be larger, and the untouched remainder of the working buffer is left
// as the random pre-fill. The last byte of the last processed chunk is
// always written to slot 0, which the LFSR itself never emits; every
// other chunk's last byte goes to the LFSR-emitted position.
func Encrypt(plaintext []byte, k Key) ([]byte, error) {
	if uint32(len(plaintext)) != k.InSize {
		return nil, fmt.Errorf("segment: Encrypt: plaintext is %d bytes, want %d", len(plaintext), k.InSize)
	}
	if k.OutSize%constants.ChunkSize != 0 {
		return nil, fmt.Errorf("segment: Encrypt: OutSize %d is not a multiple of %d", k.OutSize, constants.ChunkSize)
	}

	work := make([]byte, k.OutSize)
	if k.OutSize > k.InSize {
		if _, err := rand.Read(work); err != nil {
			return nil, fmt.Errorf("segment: Encrypt: pre-filling working buffer: %w", err)
		}
	}

	block, err := aes.NewCipher(k.AESKey[:])
	if err != nil {
		return nil, fmt.Errorf("segment: Encrypt: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, k.IV[:])

	var g lfsr.Generator
	if !g.SetSpec(k.LFSR) {
		return nil, fmt.Errorf("segment: Encrypt: malformed LFSR spec")
	}

	var indices [constants.ChunkSize]uint32
	var chunk [constants.ChunkSize]byte

	remaining := k.InSize
	var pos uint32
	for remaining > 0 {
		take := remaining
		if take > constants.ChunkSize {
			take = constants.ChunkSize
		}

		copy(chunk[:take], plaintext[pos:pos+take])
		if take < constants.ChunkSize {
			if _, err := rand.Read(chunk[take:]); err != nil {
				return nil, fmt.Errorf("segment: Encrypt: padding final chunk: %w", err)
			}
		}

		mode.CryptBlocks(chunk[:], chunk[:])

		if err := g.FillNext(indices[:]); err != nil {
			return nil, fmt.Errorf("segment: Encrypt: chunk at offset %d: %w", pos, err)
		}

		for i := 0; i < constants.ChunkSize-1; i++ {
			work[indices[i]] = chunk[i]
		}

		remaining -= take
		pos += take
		if remaining == 0 {
			work[0] = chunk[constants.ChunkSize-1]
		} else {
			work[indices[constants.ChunkSize-1]] = chunk[constants.ChunkSize-1]
		}
	}

	return work, nil
}

// Decrypt reverses Encrypt: it gathers back only the chunks needed to
// cover k.InSize bytes from their scattered positions, decrypts under
// AES-256-CBC chained across the segment, and returns the recovered
// plaintext. Any remainder of the OutSize ciphertext beyond what those
// chunks cover is the random pre-fill Encrypt left untouched and is
// ignored here.
func Decrypt(ciphertext []byte, k Key) ([]byte, error) {
	if uint32(len(ciphertext)) != k.OutSize {
		return nil, fmt.Errorf("segment: Decrypt: ciphertext is %d bytes, want %d", len(ciphertext), k.OutSize)
	}
	if k.OutSize%constants.ChunkSize != 0 {
		return nil, fmt.Errorf("segment: Decrypt: OutSize %d is not a multiple of %d", k.OutSize, constants.ChunkSize)
	}

	block, err := aes.NewCipher(k.AESKey[:])
	if err != nil {
		return nil, fmt.Errorf("segment: Decrypt: %w", err)
	}
	mode := cipher.NewCBCDecrypter(block, k.IV[:])

	var g lfsr.Generator
	if !g.SetSpec(k.LFSR) {
		return nil, fmt.Errorf("segment: Decrypt: malformed LFSR spec")
	}

	plaintext := make([]byte, k.InSize)
	var indices [constants.ChunkSize]uint32
	var chunk [constants.ChunkSize]byte

	remaining := k.InSize
	var pos uint32
	for remaining > 0 {
		take := remaining
		if take > constants.ChunkSize {
			take = constants.ChunkSize
		}

		if err := g.FillNext(indices[:]); err != nil {
			return nil, fmt.Errorf("segment: Decrypt: chunk at offset %d: %w", pos, err)
		}

		for i := 0; i < constants.ChunkSize-1; i++ {
			chunk[i] = ciphertext[indices[i]]
		}
		if remaining == take {
			chunk[constants.ChunkSize-1] = ciphertext[0]
		} else {
			chunk[constants.ChunkSize-1] = ciphertext[indices[constants.ChunkSize-1]]
		}

		mode.CryptBlocks(chunk[:], chunk[:])
		copy(plaintext[pos:pos+take], chunk[:take])

		remaining -= take
		pos += take
	}

	return plaintext, nil
}
