package savefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDocument builds a small save document. Serials are double-quoted
// because "@" cannot start a plain YAML scalar.
func testDocument(t *testing.T, weapon, equipment string) []byte {
	t.Helper()
	return []byte("state:\n" +
		"  char_name: Test\n" +
		"inventory:\n" +
		"  items:\n" +
		"    - \"" + weapon + "\"\n" +
		"    - \"" + equipment + "\"\n" +
		"bank:\n" +
		"  slot_a: \"" + weapon + "\"\n" +
		"equipped:\n" +
		"  - \"" + weapon + "\"\n")
}

func TestFindSerials(t *testing.T) {
	weapon := makeSerial('r', make([]byte, 24))
	equipment := makeSerial('e', make([]byte, 24))

	doc, err := ParseDocument(testDocument(t, weapon, equipment))
	require.NoError(t, err)

	items := FindSerials(doc)
	require.Len(t, items, 4)

	t.Run("paths use dot keys and bracketed indexes", func(t *testing.T) {
		assert.Contains(t, items, "inventory.items[0]")
		assert.Contains(t, items, "inventory.items[1]")
		assert.Contains(t, items, "bank.slot_a")
		assert.Contains(t, items, "equipped[0]")
	})

	t.Run("locations derive from paths", func(t *testing.T) {
		assert.Equal(t, LocationInventory, items["inventory.items[0]"].Location)
		assert.Equal(t, LocationBank, items["bank.slot_a"].Location)
		assert.Equal(t, LocationEquipped, items["equipped[0]"].Location)
	})

	t.Run("categories follow type tags", func(t *testing.T) {
		assert.Equal(t, CategoryWeapon, items["inventory.items[0]"].Category)
		assert.Equal(t, CategoryEquipment, items["inventory.items[1]"].Category)
	})

	t.Run("non-serial scalars ignored", func(t *testing.T) {
		assert.NotContains(t, items, "state.char_name")
	})
}

func TestFindSerials_DropsUndecodableSerials(t *testing.T) {
	// "@Ugr" with no payload decodes to nothing: confidence none, omitted.
	doc, err := ParseDocument([]byte("items:\n  - \"@Ugr\"\n"))
	require.NoError(t, err)
	assert.Empty(t, FindSerials(doc))
}

func TestClassifyLocation(t *testing.T) {
	tests := []struct {
		path     string
		expected ItemLocation
	}{
		{path: "inventory.items[0]", expected: LocationInventory},
		{path: "state.backpack[3]", expected: LocationInventory},
		{path: "bank.slot_a", expected: LocationBank},
		{path: "lost_loot[1]", expected: LocationLostLoot},
		{path: "equipped[0]", expected: LocationEquipped},
		{path: "vehicles.vehicle_loadout[0]", expected: LocationVehicle},
		{path: "somewhere.else", expected: LocationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyLocation(tt.path))
		})
	}
}

func TestApplyEdits(t *testing.T) {
	weapon := makeSerial('r', func() []byte {
		p := make([]byte, 24)
		p[2] = 30 // level
		p[4] = 2  // rarity
		return p
	}())
	equipment := makeSerial('e', make([]byte, 24))

	original := testDocument(t, weapon, equipment)
	doc, err := ParseDocument(original)
	require.NoError(t, err)
	items := FindSerials(doc)

	t.Run("edit rewrites the serial at its exact path", func(t *testing.T) {
		edit := items["inventory.items[0]"]
		level := 72
		edit.Stats.Level = &level

		edited, warnings, err := ApplyEdits(doc, map[string]DecodedItem{
			"inventory.items[0]": edit,
		})
		require.NoError(t, err)
		assert.Empty(t, warnings)

		reItems := FindSerials(edited)
		require.NotNil(t, reItems["inventory.items[0]"].Stats.Level)
		assert.Equal(t, 72, *reItems["inventory.items[0]"].Stats.Level)

		// Sibling serials untouched.
		assert.Equal(t, weapon, reItems["bank.slot_a"].Serial.Raw)
	})

	t.Run("original document is never modified", func(t *testing.T) {
		edit := items["bank.slot_a"]
		level := 10
		edit.Stats.Level = &level

		_, _, err := ApplyEdits(doc, map[string]DecodedItem{"bank.slot_a": edit})
		require.NoError(t, err)

		after := FindSerials(doc)
		assert.Equal(t, weapon, after["bank.slot_a"].Serial.Raw)
	})

	t.Run("unknown path is a caller error", func(t *testing.T) {
		_, _, err := ApplyEdits(doc, map[string]DecodedItem{
			"inventory.items[99]": items["inventory.items[0]"],
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPathNotFound)
	})

	t.Run("unapplicable edit surfaces a warning, not an error", func(t *testing.T) {
		shortDoc, err := ParseDocument([]byte("items:\n  - \"" + makeSerial('r', []byte{1, 2, 3}) + "\"\n"))
		require.NoError(t, err)
		shortItems := FindSerials(shortDoc)
		require.Contains(t, shortItems, "items[0]")

		edit := shortItems["items[0]"]
		primary := 500 // offset beyond the 3-byte payload
		edit.Stats.PrimaryStat = &primary

		edited, warnings, err := ApplyEdits(shortDoc, map[string]DecodedItem{"items[0]": edit})
		require.NoError(t, err)
		require.Len(t, warnings, 1)

		reItems := FindSerials(edited)
		assert.Equal(t, edit.Serial.Raw, reItems["items[0]"].Serial.Raw)
	})
}

// Re-encoding an untouched document yields byte-identical ciphertext: the
// cipher is deterministic and an empty edit set changes nothing.
func TestApplyEdits_EmptyEditsIdempotent(t *testing.T) {
	doc, err := ParseDocument(testDocument(t, makeSerial('r', make([]byte, 24)), makeSerial('e', make([]byte, 24))))
	require.NoError(t, err)

	edited, warnings, err := ApplyEdits(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	originalBytes, err := MarshalDocument(doc)
	require.NoError(t, err)
	editedBytes, err := MarshalDocument(edited)
	require.NoError(t, err)
	require.Equal(t, originalBytes, editedBytes)

	originalCT, err := EncodeContainer(originalBytes, testSteamID, PlatformSteam)
	require.NoError(t, err)
	editedCT, err := EncodeContainer(editedBytes, testSteamID, PlatformSteam)
	require.NoError(t, err)
	assert.Equal(t, originalCT, editedCT)
}

// Tags the parser does not recognize survive a parse/serialize round trip.
func TestDocument_UnknownTagRoundTrip(t *testing.T) {
	source := []byte("state:\n" +
		"  progress: !SaveDialect\n" +
		"    missions: 3\n" +
		"  blob: !!binary aGVsbG8=\n")

	doc, err := ParseDocument(source)
	require.NoError(t, err)

	out, err := MarshalDocument(doc)
	require.NoError(t, err)

	reparsed, err := ParseDocument(out)
	require.NoError(t, err)
	reout, err := MarshalDocument(reparsed)
	require.NoError(t, err)

	assert.Equal(t, out, reout, "serialization must be stable")
	assert.Contains(t, string(out), "!SaveDialect")
	assert.Contains(t, string(out), "missions: 3")
}
