package savefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   Platform
	}{
		{name: "steam id", identifier: "76561190000000001", expected: PlatformSteam},
		{name: "epic hex id", identifier: "aabbccddeeff00112233445566778899", expected: PlatformEpic},
		{name: "email-like id", identifier: "player42@example.com", expected: PlatformEpic},
		{name: "no digits", identifier: "somename", expected: PlatformEpic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.identifier))
		})
	}
}

// DeriveKey must return exactly 32 bytes for any input; wrong identifiers
// produce a wrong key, never a failure.
func TestDeriveKey_AlwaysKeySize(t *testing.T) {
	identifiers := []string{
		"76561190000000001",
		"aabbccddeeff00112233445566778899",
		"x",
		"a-very-long-identifier-that-exceeds-the-key-size-many-times-over-and-keeps-going",
		"   ",
		"no-digits-at-all",
	}
	for _, id := range identifiers {
		for _, hint := range []Platform{PlatformSteam, PlatformEpic, PlatformAuto} {
			key := DeriveKey(id, hint)
			assert.Len(t, key, keySize, "identifier %q hint %q", id, hint)
		}
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey("76561190000000001", PlatformAuto)
	b := DeriveKey("76561190000000001", PlatformSteam)
	assert.Equal(t, a, b, "auto-detection must match the explicit hint")

	c := DeriveKey("76561190000000002", PlatformSteam)
	assert.NotEqual(t, a, c, "different identifiers must derive different keys")
}

func TestDeriveKey_SteamCoversWholeKey(t *testing.T) {
	key := DeriveKey("76561190000000001", PlatformSteam)
	// The 8 little-endian bytes repeat cyclically, so every 8-byte stripe
	// differs from the base constant by the same mask.
	for i := 0; i < keySize; i++ {
		assert.Equal(t, key[i]^baseKey[i], key[i%8]^baseKey[i%8], "offset %d", i)
	}
}

func TestDeriveKey_EpicNoWraparound(t *testing.T) {
	// Four runes encode to 8 UTF-16LE bytes; everything past offset 8 must
	// remain the base constant.
	key := DeriveKey("abcd", PlatformEpic)
	assert.Equal(t, baseKey[8:], key[8:])
	assert.NotEqual(t, baseKey[:8], key[:8])
}

func TestDeriveKey_EpicTrimsWhitespace(t *testing.T) {
	require.Equal(t,
		DeriveKey("aabbccdd", PlatformEpic),
		DeriveKey("  aabbccdd  ", PlatformEpic))
}

func TestDeriveKey_SteamStripsNonDigits(t *testing.T) {
	require.Equal(t,
		DeriveKey("76561190000000001", PlatformSteam),
		DeriveKey("steam:7656119-0000000001", PlatformSteam))
}

func TestDeriveKey_DegenerateSteamIdentifier(t *testing.T) {
	// No digits at all falls back to "0": the key is the base constant.
	key := DeriveKey("nodigits", PlatformSteam)
	assert.Equal(t, baseKey[:], key)
}
