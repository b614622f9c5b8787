package savefile

import (
	"encoding/binary"
	"math/big"
	"strings"
	"unicode/utf16"
)

// Platform identifies which account system a platform identifier belongs to.
type Platform string

const (
	PlatformSteam Platform = "steam"
	PlatformEpic  Platform = "epic"
	PlatformAuto  Platform = "auto"
)

// keySize is the AES-256 key length. DeriveKey always returns exactly this
// many bytes regardless of identifier length.
const keySize = 32

// baseKey is the fixed constant the platform identifier is XORed into.
var baseKey = [keySize]byte{
	0x6b, 0x31, 0xd4, 0x9e, 0x07, 0xc5, 0x2a, 0xf8,
	0x53, 0xbe, 0x60, 0x1d, 0x8f, 0x44, 0xe2, 0x79,
	0x0b, 0xa7, 0x3c, 0xd0, 0x96, 0x58, 0xe1, 0x25,
	0x4f, 0x82, 0x19, 0xcb, 0x74, 0x3a, 0xfd, 0x66,
}

// DetectPlatform guesses the platform from the identifier shape: anything
// with a digit and no "@" is treated as a Steam ID, everything else as an
// Epic account ID. The heuristic is ad hoc; callers that know the platform
// should pass it explicitly instead of relying on auto-detection.
func DetectPlatform(identifier string) Platform {
	hasDigit := strings.ContainsAny(identifier, "0123456789")
	if hasDigit && !strings.Contains(identifier, "@") {
		return PlatformSteam
	}
	return PlatformEpic
}

// DeriveKey turns a platform account identifier into the AES-256 key the
// container is encrypted with. It never fails: degenerate identifiers still
// produce a key, and a wrong key surfaces downstream as ErrDecryptionFailed.
func DeriveKey(identifier string, hint Platform) []byte {
	if hint == PlatformAuto || hint == "" {
		hint = DetectPlatform(identifier)
	}

	key := make([]byte, keySize)
	copy(key, baseKey[:])

	switch hint {
	case PlatformSteam:
		deriveSteam(key, identifier)
	default:
		deriveEpic(key, identifier)
	}
	return key
}

// deriveSteam parses the identifier's digits as an unsigned integer, lays it
// out as 8 little-endian bytes, and XORs those bytes cyclically across the
// whole key.
func deriveSteam(key []byte, identifier string) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, identifier)
	if digits == "" {
		digits = "0"
	}

	// SteamID64 values fit a uint64, but arbitrary digit strings may not;
	// reduce modulo 2^64 so derivation never fails.
	id, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		id = big.NewInt(0)
	}
	id.Mod(id, new(big.Int).Lsh(big.NewInt(1), 64))

	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], id.Uint64())
	for i := range key {
		key[i] ^= le[i%len(le)]
	}
}

// deriveEpic XORs the UTF-16LE encoding of the trimmed identifier into the
// key starting at offset 0, without wraparound: key bytes beyond the encoded
// identifier are left as the base constant.
func deriveEpic(key []byte, identifier string) {
	units := utf16.Encode([]rune(strings.TrimSpace(identifier)))
	encoded := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(encoded[2*i:], u)
	}
	for i := 0; i < len(key) && i < len(encoded); i++ {
		key[i] ^= encoded[i]
	}
}
