package fontfile

import (
	"encoding/binary"
	"unicode/utf16"

	xsfnt "golang.org/x/image/font/sfnt"
)

// nameID values from the OpenType 'name' table specification.
const (
	nameCopyright          = 0
	nameFamily             = 1
	nameSubfamily          = 2
	nameUniqueID           = 3
	nameFull               = 4
	nameVersion            = 5
	namePostScript         = 6
	nameTrademark          = 7
	nameManufacturer       = 8
	nameDesigner           = 9
	nameManufacturerURL    = 11
	nameDesignerURL        = 12
	nameLicense            = 13
	nameLicenseURL         = 14
	namePreferredFamily    = 16
	namePreferredSubfamily = 17
)

// parseNameTable extracts FontMetadata from the raw 'name' table bytes,
// preferring English strings (platform 3/encoding 1/language 0x0409, or
// platform 1/language 0) and otherwise taking the first decodable string
// for each nameID (spec.md §3).
func parseNameTable(data []byte, dir tableDirectory) Metadata {
	raw := tableBytes(data, dir, "name")
	var m Metadata
	if raw == nil || len(raw) < 6 {
		return m
	}
	count := binary.BigEndian.Uint16(raw[2:4])
	storageOffset := binary.BigEndian.Uint16(raw[4:6])
	const recSize = 12
	type found struct {
		value    string
		priority int // higher wins
	}
	best := map[uint16]found{}

	for i := uint16(0); i < count; i++ {
		recStart := 6 + int(i)*recSize
		if recStart+recSize > len(raw) {
			break
		}
		platformID := binary.BigEndian.Uint16(raw[recStart : recStart+2])
		encodingID := binary.BigEndian.Uint16(raw[recStart+2 : recStart+4])
		languageID := binary.BigEndian.Uint16(raw[recStart+4 : recStart+6])
		nameID := binary.BigEndian.Uint16(raw[recStart+6 : recStart+8])
		length := binary.BigEndian.Uint16(raw[recStart+8 : recStart+10])
		offset := binary.BigEndian.Uint16(raw[recStart+10 : recStart+12])

		strStart := int(storageOffset) + int(offset)
		strEnd := strStart + int(length)
		if strStart < 0 || strEnd > len(raw) || strEnd < strStart {
			continue
		}
		strBytes := raw[strStart:strEnd]

		var value string
		var priority int
		switch {
		case platformID == 3 && encodingID == 1:
			value = decodeUTF16BE(strBytes)
			priority = 1
			if languageID == 0x0409 {
				priority = 3
			}
		case platformID == 0:
			value = decodeUTF16BE(strBytes)
			priority = 1
		case platformID == 1 && encodingID == 0:
			value = decodeMacRoman(strBytes)
			priority = 1
			if languageID == 0 {
				priority = 2
			}
		default:
			value = decodeMacRoman(strBytes)
			priority = 0
		}
		if value == "" {
			continue
		}
		if cur, ok := best[nameID]; !ok || priority > cur.priority {
			best[nameID] = found{value: value, priority: priority}
		}
	}

	get := func(id uint16) string { return best[id].value }
	m.Copyright = get(nameCopyright)
	m.Family = get(nameFamily)
	m.Subfamily = get(nameSubfamily)
	m.UniqueID = get(nameUniqueID)
	m.FullName = get(nameFull)
	m.Version = get(nameVersion)
	m.PostScriptName = get(namePostScript)
	m.Trademark = get(nameTrademark)
	m.Manufacturer = get(nameManufacturer)
	m.Designer = get(nameDesigner)
	m.ManufacturerURL = get(nameManufacturerURL)
	m.DesignerURL = get(nameDesignerURL)
	m.License = get(nameLicense)
	m.LicenseURL = get(nameLicenseURL)
	m.PreferredFamily = get(namePreferredFamily)
	m.PreferredSubfamily = get(namePreferredSubfamily)

	if m.Family == "" || m.FullName == "" {
		fillFromXSfnt(data, &m)
	}
	return m
}

// fillFromXSfnt fills in any still-empty fields using
// golang.org/x/image/font/sfnt, which already implements the platform
// preference rules for the handful of name IDs it exposes. This is only
// a fallback: it never overrides a value our own table walk already found,
// and it cannot supply fields x/image/font/sfnt does not expose (designer,
// manufacturer, license, URLs, ...).
func fillFromXSfnt(data []byte, m *Metadata) {
	f, err := xsfnt.Parse(data)
	if err != nil {
		return
	}
	var buf xsfnt.Buffer
	get := func(id xsfnt.NameID) string {
		s, err := f.Name(&buf, id)
		if err != nil {
			return ""
		}
		return s
	}
	if m.Family == "" {
		m.Family = get(xsfnt.NameIDFamily)
	}
	if m.Subfamily == "" {
		m.Subfamily = get(xsfnt.NameIDSubfamily)
	}
	if m.FullName == "" {
		m.FullName = get(xsfnt.NameIDFull)
	}
	if m.PostScriptName == "" {
		m.PostScriptName = get(xsfnt.NameIDPostScript)
	}
}

func decodeUTF16BE(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units))
}

// decodeMacRoman decodes the ASCII-compatible subset of Mac Roman
// encoding. Non-ASCII bytes are replaced with U+FFFD; full Mac Roman
// tables are not implemented since virtually all modern fonts also carry
// a Windows/Unicode (platform 3) name record for the same string.
func decodeMacRoman(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if c < 0x80 {
			runes = append(runes, rune(c))
		} else {
			runes = append(runes, 0xFFFD)
		}
	}
	return string(runes)
}
