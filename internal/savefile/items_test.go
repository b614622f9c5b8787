package savefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSerial packs a payload under "@Ug" plus the given type tag.
func makeSerial(tag byte, payload []byte) string {
	return bitpackEncode(payload, SerialPrefix+string(tag))
}

func TestValidateRarity(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
		present  bool
	}{
		{name: "tier passes through", input: 3, expected: 3, present: true},
		{name: "zero passes through", input: 0, expected: 0, present: true},
		{name: "upper tier boundary", input: 10, expected: 10, present: true},
		{name: "large value scaled by 25", input: 250, expected: 4, present: true},
		{name: "hundred scaled by 25", input: 100, expected: 4, present: true},
		{name: "mid value scaled by 2", input: 45, expected: 4, present: true},
		{name: "low mid value scaled by 2", input: 11, expected: 4, present: true},
		{name: "negative treated as absent", input: -1, present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := validateRarity(tt.input)
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestParseSerial(t *testing.T) {
	t.Run("tag is the character after the prefix", func(t *testing.T) {
		s := parseSerial("@UgrAAAA")
		assert.Equal(t, byte('r'), s.TypeTag)
		assert.Equal(t, []byte{0, 0, 0}, s.Payload)
	})

	t.Run("missing prefix means unknown tag", func(t *testing.T) {
		s := parseSerial("AAAA")
		assert.Equal(t, byte('?'), s.TypeTag)
	})
}

// A weapon serial over an all-zero payload: known layout, high confidence,
// rarity 0 via the pass-through band, no plausible level anywhere.
func TestDecodeItem_ZeroWeapon(t *testing.T) {
	item := decodeItem(makeSerial('r', make([]byte, 24)))

	assert.Equal(t, CategoryWeapon, item.Category)
	assert.Equal(t, ConfidenceHigh, item.Confidence)
	require.NotNil(t, item.Stats.Rarity)
	assert.Equal(t, 0, *item.Stats.Rarity)
	assert.Nil(t, item.Stats.Level)
}

func TestDecodeItem_Categories(t *testing.T) {
	payload := make([]byte, 24)
	tests := []struct {
		tag        byte
		category   Category
		confidence Confidence
	}{
		{tag: 'r', category: CategoryWeapon, confidence: ConfidenceHigh},
		{tag: 'e', category: CategoryEquipment, confidence: ConfidenceHigh},
		{tag: 'd', category: CategoryEquipment, confidence: ConfidenceMedium},
		{tag: 'w', category: CategoryOther, confidence: ConfidenceLow},
		{tag: 'u', category: CategoryOther, confidence: ConfidenceLow},
		{tag: '!', category: CategoryOther, confidence: ConfidenceLow},
		{tag: 'z', category: CategoryOther, confidence: ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			item := decodeItem(makeSerial(tt.tag, payload))
			assert.Equal(t, tt.category, item.Category)
			assert.Equal(t, tt.confidence, item.Confidence)
		})
	}
}

func TestDecodeItem_WeaponFields(t *testing.T) {
	payload := make([]byte, 24)
	payload[2] = 57         // level
	payload[4] = 3          // rarity
	payload[6] = 9          // manufacturer
	payload[8] = 2          // item class
	payload[12], payload[13] = 0x34, 0x12 // primary, u16le
	payload[14], payload[15] = 0x01, 0x02 // secondary, u16le

	item := decodeItem(makeSerial('r', payload))

	require.NotNil(t, item.Stats.Level)
	assert.Equal(t, 57, *item.Stats.Level)
	require.NotNil(t, item.Stats.Rarity)
	assert.Equal(t, 3, *item.Stats.Rarity)
	require.NotNil(t, item.Stats.Manufacturer)
	assert.Equal(t, 9, *item.Stats.Manufacturer)
	require.NotNil(t, item.Stats.ItemClass)
	assert.Equal(t, 2, *item.Stats.ItemClass)
	require.NotNil(t, item.Stats.PrimaryStat)
	assert.Equal(t, 0x1234, *item.Stats.PrimaryStat)
	require.NotNil(t, item.Stats.SecondaryStat)
	assert.Equal(t, 0x0201, *item.Stats.SecondaryStat)

	assert.Equal(t, 57, item.RawFields["level"])
	assert.Equal(t, 3, item.RawFields["rarity"])
}

// When the layout's level offset holds an implausible value the decoder
// scans the payload head for the literal 50 and adopts the first hit.
func TestDecodeItem_FallbackLevelScan(t *testing.T) {
	t.Run("implausible level falls back to first 50", func(t *testing.T) {
		payload := make([]byte, 24)
		payload[2] = 200 // outside 1..72
		payload[7] = 50

		item := decodeItem(makeSerial('r', payload))
		require.NotNil(t, item.Stats.Level)
		assert.Equal(t, 50, *item.Stats.Level)
		assert.Equal(t, 7, item.RawFields["level_fallback_offset"])
	})

	t.Run("scan is bounded to the payload head", func(t *testing.T) {
		payload := make([]byte, 24)
		payload[2] = 200
		payload[21] = 50 // beyond the scanned range

		item := decodeItem(makeSerial('r', payload))
		assert.Nil(t, item.Stats.Level)
	})

	t.Run("plausible level wins over scan", func(t *testing.T) {
		payload := make([]byte, 24)
		payload[2] = 30
		payload[7] = 50

		item := decodeItem(makeSerial('r', payload))
		require.NotNil(t, item.Stats.Level)
		assert.Equal(t, 30, *item.Stats.Level)
	})
}

func TestDecodeItem_ShortPayload(t *testing.T) {
	// Two bytes cover none of the weapon offsets: fields absent, but the
	// decode still succeeds at the type's fixed confidence.
	item := decodeItem(makeSerial('r', []byte{1, 2}))
	assert.Equal(t, ConfidenceHigh, item.Confidence)
	assert.Nil(t, item.Stats.PrimaryStat)
	assert.Nil(t, item.Stats.Rarity)
}

func TestDecodeItem_EmptyPayload(t *testing.T) {
	item := decodeItem("@Ugr")
	assert.Equal(t, ConfidenceNone, item.Confidence)
}

func TestEncodeItem_RoundTrip(t *testing.T) {
	payload := make([]byte, 24)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	payload[2] = 40 // plausible level so no fallback scan interferes
	payload[4] = 3  // pass-through rarity band so decode does not reclamp
	original := decodeItem(makeSerial('r', payload))

	t.Run("unchanged stats re-encode to the same payload", func(t *testing.T) {
		serial, fellBack := encodeItem(original)
		assert.False(t, fellBack)
		assert.Equal(t, original.Serial.Payload, bitpackDecode(serial[4:]))
	})

	t.Run("edited level lands at its offset only", func(t *testing.T) {
		edited := original
		level := 72
		edited.Stats.Level = &level

		serial, fellBack := encodeItem(edited)
		assert.False(t, fellBack)

		reDecoded := bitpackDecode(serial[4:])
		assert.Equal(t, byte(72), reDecoded[2])

		// Every other byte, understood or not, is preserved.
		for i, b := range original.Serial.Payload {
			if i == 2 {
				continue
			}
			assert.Equal(t, b, reDecoded[i], "offset %d", i)
		}
	})
}

func TestEncodeItem_FallbackOnShortBuffer(t *testing.T) {
	item := decodeItem(makeSerial('r', []byte{1, 2, 3}))
	level := 50
	item.Stats.Level = &level // fits: offset 2 in a 3-byte payload

	primary := 100
	item.Stats.PrimaryStat = &primary // offset 12 does not fit

	serial, fellBack := encodeItem(item)
	assert.True(t, fellBack)
	assert.Equal(t, item.Serial.Raw, serial, "original serial preserved on fallback")
}
