// Package keydescriptor serializes and parses the sidecar key descriptor:
// the textual tree of segment records (LFSR spec, sizes, IV, AES key) that
// lets an encrypted file be decrypted. It is never itself encrypted.
package keydescriptor

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/vilshansen/hypercrypt/constants"
	"github.com/vilshansen/hypercrypt/segment"
)

// document is the on-wire tree shape, rooted at constants.TagRoot.
type document struct {
	XMLName  xml.Name      `xml:"HyperCryptKey"`
	Version  string        `xml:"version"`
	Segments segmentsBlock `xml:"Segments"`
}

type segmentsBlock struct {
	Segment []segmentBlock `xml:"Segment"`
}

type segmentBlock struct {
	InSize  uint32      `xml:"in_size"`
	OutSize uint32      `xml:"out_size"`
	LFSR    uint64      `xml:"lfsr"`
	Crypto  cryptoBlock `xml:"Crypto"`
}

type cryptoBlock struct {
	Scheme string `xml:"scheme"`
	IV     string `xml:"iv"`
	Key    string `xml:"key"`
}

// Serialize renders a segment plan as a key descriptor document: the
// version tag as 8 uppercase hex digits, sizes as decimal, and the IV/key
// of every segment as uppercase hex, in plan order.
func Serialize(keys []segment.Key) ([]byte, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("keydescriptor: cannot serialize an empty segment plan")
	}

	doc := document{
		Version: fmt.Sprintf("%08X", constants.KeyVersion),
	}
	doc.Segments.Segment = make([]segmentBlock, len(keys))
	for i, k := range keys {
		doc.Segments.Segment[i] = segmentBlock{
			InSize:  k.InSize,
			OutSize: k.OutSize,
			LFSR:    k.LFSR,
			Crypto: cryptoBlock{
				Scheme: constants.CryptoScheme,
				IV:     encodeHex(k.IV[:]),
				Key:    encodeHex(k.AESKey[:]),
			},
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("keydescriptor: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Parse reverses Serialize, reconstructing the ordered segment plan a key
// descriptor describes. It rejects a descriptor whose version tag does not
// match constants.KeyVersion, whose scheme tag is not
// constants.CryptoScheme, or whose iv/key fields are not valid hex of the
// expected length. Unknown child elements are ignored, matching the
// reference parser's tolerance for forward-compatible extensions.
func Parse(data []byte) ([]segment.Key, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("keydescriptor: malformed descriptor: %w", err)
	}

	var version uint32
	if _, err := fmt.Sscanf(doc.Version, "%08X", &version); err != nil {
		return nil, fmt.Errorf("keydescriptor: unreadable version tag %q: %w", doc.Version, err)
	}
	if version != constants.KeyVersion {
		return nil, fmt.Errorf("keydescriptor: unsupported version %08X, want %08X", version, constants.KeyVersion)
	}

	if len(doc.Segments.Segment) == 0 {
		return nil, fmt.Errorf("keydescriptor: descriptor has no segments")
	}

	keys := make([]segment.Key, len(doc.Segments.Segment))
	for i, sb := range doc.Segments.Segment {
		if sb.Crypto.Scheme != constants.CryptoScheme {
			return nil, fmt.Errorf("keydescriptor: segment %d: unsupported scheme %q", i, sb.Crypto.Scheme)
		}
		if sb.InSize == 0 || sb.InSize > sb.OutSize {
			return nil, fmt.Errorf("keydescriptor: segment %d: invalid in_size/out_size %d/%d", i, sb.InSize, sb.OutSize)
		}

		iv, err := decodeHexFixed(sb.Crypto.IV, constants.IVSize)
		if err != nil {
			return nil, fmt.Errorf("keydescriptor: segment %d: iv: %w", i, err)
		}
		key, err := decodeHexFixed(sb.Crypto.Key, constants.KeySize)
		if err != nil {
			return nil, fmt.Errorf("keydescriptor: segment %d: key: %w", i, err)
		}

		k := segment.Key{
			InSize:  sb.InSize,
			OutSize: sb.OutSize,
			LFSR:    sb.LFSR,
		}
		copy(k.IV[:], iv)
		copy(k.AESKey[:], key)
		keys[i] = k
	}

	return keys, nil
}

func encodeHex(b []byte) string {
	return fmt.Sprintf("%X", b)
}

// decodeHexFixed decodes s as exactly size bytes of uppercase hex, per
// spec.md §4.5: hex must be uppercase 0-9A-F, and lowercase is a parse
// error rather than a silently accepted equivalent.
func decodeHexFixed(s string, size int) ([]byte, error) {
	if len(s) != 2*size {
		return nil, fmt.Errorf("expected %d hex characters, got %d", 2*size, len(s))
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return nil, fmt.Errorf("invalid hex %q: not uppercase 0-9A-F", s)
		}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}
