package savefile

import (
	"encoding/binary"
	"strings"
)

// Category is the coarse item classification derived from the serial's
// type tag.
type Category string

const (
	CategoryWeapon    Category = "weapon"
	CategoryEquipment Category = "equipment"
	CategoryOther     Category = "other"
)

// Confidence grades how well-understood a decoded item's byte layout is.
// It is a fixed per-type constant, not a measurement of field plausibility.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ItemSerial is a parsed serial string: the raw text, the type tag (the
// character after the "@Ug" prefix, '?' when absent), and the bit-unpacked
// payload bytes.
type ItemSerial struct {
	Raw     string `json:"raw"`
	TypeTag byte   `json:"-"`
	Payload []byte `json:"-"`
}

// Stats are the named fields the codec understands. Nil means the field is
// not present for this item type or could not be read. Callers mutate Stats
// before re-encoding; untouched fields keep their original bytes.
type Stats struct {
	PrimaryStat   *int `json:"primary_stat,omitempty"`
	SecondaryStat *int `json:"secondary_stat,omitempty"`
	Level         *int `json:"level,omitempty"`
	Rarity        *int `json:"rarity,omitempty"`
	Manufacturer  *int `json:"manufacturer,omitempty"`
	ItemClass     *int `json:"item_class,omitempty"`
}

// DecodedItem is one item serial interpreted as stat fields.
type DecodedItem struct {
	Serial     ItemSerial     `json:"serial"`
	Category   Category       `json:"category"`
	Stats      Stats          `json:"stats"`
	RawFields  map[string]int `json:"raw_fields,omitempty"`
	Confidence Confidence     `json:"confidence"`
	Location   ItemLocation   `json:"location"`
}

// fieldSpec locates one little-endian field in the payload. Width 0 means
// the item type has no such field.
type fieldSpec struct {
	offset int
	width  int // 1 or 2 bytes
}

// layout is the per-type offset table. The offsets are reverse-engineered
// guesses rather than a documented format, which is why they live in one
// record per type instead of scattered conditionals: when better data
// emerges only the table changes.
type layout struct {
	category   Category
	confidence Confidence

	primary      fieldSpec
	secondary    fieldSpec
	level        fieldSpec
	rarity       fieldSpec
	manufacturer fieldSpec
	itemClass    fieldSpec
}

var layouts = map[byte]layout{
	'r': { // weapons
		category:     CategoryWeapon,
		confidence:   ConfidenceHigh,
		level:        fieldSpec{offset: 2, width: 1},
		rarity:       fieldSpec{offset: 4, width: 1},
		manufacturer: fieldSpec{offset: 6, width: 1},
		itemClass:    fieldSpec{offset: 8, width: 1},
		primary:      fieldSpec{offset: 12, width: 2},
		secondary:    fieldSpec{offset: 14, width: 2},
	},
	'e': { // equipment
		category:     CategoryEquipment,
		confidence:   ConfidenceHigh,
		level:        fieldSpec{offset: 3, width: 1},
		rarity:       fieldSpec{offset: 5, width: 1},
		manufacturer: fieldSpec{offset: 7, width: 1},
		itemClass:    fieldSpec{offset: 9, width: 1},
		primary:      fieldSpec{offset: 14, width: 2},
		secondary:    fieldSpec{offset: 16, width: 2},
	},
	'd': { // equipment, alternate layout
		category:     CategoryEquipment,
		confidence:   ConfidenceMedium,
		level:        fieldSpec{offset: 4, width: 1},
		rarity:       fieldSpec{offset: 6, width: 1},
		manufacturer: fieldSpec{offset: 8, width: 1},
		primary:      fieldSpec{offset: 10, width: 2},
	},
}

// defaultLayout covers the remaining tags (w, u, f, !, v and anything
// unknown): minimal extraction at low confidence.
var defaultLayout = layout{
	category:   CategoryOther,
	confidence: ConfidenceLow,
	level:      fieldSpec{offset: 2, width: 1},
	rarity:     fieldSpec{offset: 4, width: 1},
}

const (
	minPlausibleLevel = 1
	maxPlausibleLevel = 72

	// fallbackLevelScanEnd bounds the byte range scanned for the literal
	// level value 50 when the primary offset yields nothing plausible.
	fallbackLevelScanEnd = 20
	fallbackLevelValue   = 50
)

// parseSerial splits a raw serial string into tag and payload. Strings
// without the "@Ug" prefix get tag '?' and have their whole body unpacked.
func parseSerial(raw string) ItemSerial {
	if strings.HasPrefix(raw, SerialPrefix) && len(raw) > len(SerialPrefix) {
		return ItemSerial{
			Raw:     raw,
			TypeTag: raw[len(SerialPrefix)],
			Payload: bitpackDecode(raw[len(SerialPrefix)+1:]),
		}
	}
	return ItemSerial{Raw: raw, TypeTag: '?', Payload: bitpackDecode(raw)}
}

// decodeItem interprets a serial's payload as stat fields per its type's
// layout. It never fails: an empty payload simply comes back with
// ConfidenceNone so the scanner can drop it.
func decodeItem(raw string) DecodedItem {
	serial := parseSerial(raw)
	l, ok := layouts[serial.TypeTag]
	if !ok {
		l = defaultLayout
	}

	item := DecodedItem{
		Serial:     serial,
		Category:   l.category,
		Confidence: l.confidence,
		RawFields:  map[string]int{},
		Location:   LocationUnknown,
	}
	if len(serial.Payload) == 0 {
		item.Confidence = ConfidenceNone
		return item
	}

	item.Stats.PrimaryStat = readRawField(&item, serial.Payload, l.primary, "primary_stat")
	item.Stats.SecondaryStat = readRawField(&item, serial.Payload, l.secondary, "secondary_stat")
	item.Stats.Manufacturer = readRawField(&item, serial.Payload, l.manufacturer, "manufacturer")
	item.Stats.ItemClass = readRawField(&item, serial.Payload, l.itemClass, "item_class")

	item.Stats.Level = findLevel(&item, serial.Payload, l.level)

	if raw := readRawField(&item, serial.Payload, l.rarity, "rarity"); raw != nil {
		if rarity, ok := validateRarity(*raw); ok {
			item.Stats.Rarity = &rarity
		}
	}
	return item
}

// readRawField reads one field and records its raw value in the dump.
func readRawField(item *DecodedItem, payload []byte, f fieldSpec, name string) *int {
	v, ok := readField(payload, f)
	if !ok {
		return nil
	}
	item.RawFields[name] = v
	return &v
}

func readField(payload []byte, f fieldSpec) (int, bool) {
	if f.width == 0 || f.offset+f.width > len(payload) {
		return 0, false
	}
	switch f.width {
	case 1:
		return int(payload[f.offset]), true
	case 2:
		return int(binary.LittleEndian.Uint16(payload[f.offset:])), true
	}
	return 0, false
}

// findLevel reads the level at its layout offset and, when the value is not
// plausible, scans the payload head for the literal value 50. The scan is a
// compatibility shim observed in the wild, not a general mechanism; it is
// deliberately kept as this one documented special case.
func findLevel(item *DecodedItem, payload []byte, f fieldSpec) *int {
	if v := readRawField(item, payload, f, "level"); v != nil {
		if *v >= minPlausibleLevel && *v <= maxPlausibleLevel {
			return v
		}
	}
	end := fallbackLevelScanEnd
	if end > len(payload) {
		end = len(payload)
	}
	for i := 0; i < end; i++ {
		if payload[i] == fallbackLevelValue {
			v := fallbackLevelValue
			item.RawFields["level_fallback_offset"] = i
			return &v
		}
	}
	return nil
}

// validateRarity clamps raw rarity values into the 0-4 tier range: 0-10
// pass through, values >= 100 map via /25, 11-99 via /2, negatives are
// treated as absent.
func validateRarity(v int) (int, bool) {
	switch {
	case v >= 0 && v <= 10:
		return v, true
	case v >= 100:
		return min(4, v/25), true
	case v >= 11:
		return min(4, v/2), true
	}
	return 0, false
}

// encodeItem writes the item's present stats back into a copy of its
// decoded payload and re-packs it under the original prefix. Bytes the
// codec does not understand are preserved untouched. When a field does not
// fit the payload the original serial is returned unchanged with fellBack
// set; this layer never fails outright.
func encodeItem(item DecodedItem) (serial string, fellBack bool) {
	l, ok := layouts[item.Serial.TypeTag]
	if !ok {
		l = defaultLayout
	}

	payload := make([]byte, len(item.Serial.Payload))
	copy(payload, item.Serial.Payload)

	writes := []struct {
		value *int
		field fieldSpec
	}{
		{item.Stats.PrimaryStat, l.primary},
		{item.Stats.SecondaryStat, l.secondary},
		{item.Stats.Level, l.level},
		{item.Stats.Rarity, l.rarity},
		{item.Stats.Manufacturer, l.manufacturer},
		{item.Stats.ItemClass, l.itemClass},
	}
	for _, w := range writes {
		if w.value == nil {
			continue
		}
		if !writeField(payload, w.field, *w.value) {
			return item.Serial.Raw, true
		}
	}
	return bitpackEncode(payload, SerialPrefix+string(item.Serial.TypeTag)), false
}

func writeField(payload []byte, f fieldSpec, v int) bool {
	if f.width == 0 || f.offset+f.width > len(payload) {
		return false
	}
	switch f.width {
	case 1:
		payload[f.offset] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(payload[f.offset:], uint16(v))
	}
	return true
}
