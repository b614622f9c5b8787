package savefile

import "strings"

// SerialPrefix is the literal marker every item serial starts with. The
// character after it is the item type tag; the rest is bit-packed payload.
const SerialPrefix = "@Ug"

// serialAlphabet is the ordered symbol set of the bit-pack encoding. Each
// character's position is its 6-bit value, so the order is part of the wire
// format and must match byte-for-byte.
const serialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	"+/=!$%&*()[]{}~`^_<>?#;"

// EncodeSerial builds a full serial string for a payload under the given
// type tag. Mostly useful for tooling and tests; the scanner produces
// serials for real items through ApplyEdits.
func EncodeSerial(payload []byte, typeTag byte) string {
	return bitpackEncode(payload, SerialPrefix+string(typeTag))
}

// bitpackDecode unpacks a serial string into its payload bytes. A leading
// SerialPrefix is stripped if present; characters outside the alphabet are
// skipped, not errors. Trailing bits that do not fill a whole byte are
// encode-side padding and are discarded, so decoding the output of
// bitpackEncode always recovers the original bytes exactly.
func bitpackDecode(s string) []byte {
	s = strings.TrimPrefix(s, SerialPrefix)

	out := make([]byte, 0, len(s)*6/8)
	var acc uint32
	var nbits int
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(serialAlphabet, s[i])
		if idx < 0 {
			continue
		}
		acc = acc<<6 | uint32(idx&0x3f)
		nbits += 6
		if nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
		}
	}
	return out
}

// bitpackEncode packs payload bytes into a serial string under the given
// prefix. The tail is zero-padded to a 6-bit boundary, which is why the
// string-to-string round trip is only exact when no partial final group
// exists; the byte-to-byte round trip is always exact.
func bitpackEncode(payload []byte, prefix string) string {
	var sb strings.Builder
	sb.Grow(len(prefix) + (len(payload)*8+5)/6)
	sb.WriteString(prefix)

	var acc uint32
	var nbits int
	for _, b := range payload {
		acc = acc<<8 | uint32(b)
		nbits += 8
		for nbits >= 6 {
			nbits -= 6
			sb.WriteByte(serialAlphabet[(acc>>nbits)&0x3f])
		}
	}
	if nbits > 0 {
		v := (acc << (6 - nbits)) & 0x3f
		// 6-bit groups always index the alphabet; the guard only matters
		// for alphabets shorter than 64 symbols.
		if int(v) < len(serialAlphabet) {
			sb.WriteByte(serialAlphabet[v])
		}
	}
	return sb.String()
}
