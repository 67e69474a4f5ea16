package fontmatch

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// buildMinimalFont and buildMinimalFontWithWeight assemble tiny synthetic
// SFNT containers for matcher tests, mirroring fontcache's own test
// helper (no real font binaries are available in this environment).

func buildMinimalFont(family string, start, end rune) []byte {
	return buildFont(family, start, end, nil)
}

func buildMinimalFontWithWeight(family string, start, end rune, weight uint16) []byte {
	os2 := make([]byte, 64)
	binary.BigEndian.PutUint16(os2[4:6], weight)
	binary.BigEndian.PutUint16(os2[6:8], 5)
	return buildFont(family, start, end, os2)
}

func buildFont(family string, start, end rune, os2 []byte) []byte {
	tables := map[string][]byte{
		"name": buildNameTable(family),
		"cmap": buildCmapTable(start, end),
	}
	tags := []string{"cmap", "name"}
	if os2 != nil {
		tables["OS/2"] = os2
		tags = []string{"OS/2", "cmap", "name"}
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000))
	binary.Write(&buf, binary.BigEndian, uint16(len(tags)))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(0))

	offset := uint32(12 + len(tags)*16)
	type rec struct {
		tag            string
		offset, length uint32
	}
	var recs []rec
	for _, t := range tags {
		d := tables[t]
		recs = append(recs, rec{t, offset, uint32(len(d))})
		offset += uint32(len(d))
	}
	for _, r := range recs {
		buf.WriteString(r.tag)
		binary.Write(&buf, binary.BigEndian, uint32(0))
		binary.Write(&buf, binary.BigEndian, r.offset)
		binary.Write(&buf, binary.BigEndian, r.length)
	}
	for _, t := range tags {
		buf.Write(tables[t])
	}
	return buf.Bytes()
}

// buildNameTable writes both the family (nameID 1) and full name (nameID 4)
// records pointing at the same string bytes, so tests can query by either
// Pattern.Family or Pattern.Name against the one family string.
func buildNameTable(family string) []byte {
	var strBuf bytes.Buffer
	for _, u := range utf16.Encode([]rune(family)) {
		binary.Write(&strBuf, binary.BigEndian, u)
	}
	const recSize = 12
	const numRecords = 2
	storageOffset := uint16(6 + numRecords*recSize)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(0)) // format
	binary.Write(&buf, binary.BigEndian, uint16(numRecords))
	binary.Write(&buf, binary.BigEndian, storageOffset)
	for _, nameID := range []uint16{1, 4} {
		binary.Write(&buf, binary.BigEndian, uint16(3))      // platformID
		binary.Write(&buf, binary.BigEndian, uint16(1))      // encodingID
		binary.Write(&buf, binary.BigEndian, uint16(0x0409)) // languageID
		binary.Write(&buf, binary.BigEndian, nameID)
		binary.Write(&buf, binary.BigEndian, uint16(strBuf.Len()))
		binary.Write(&buf, binary.BigEndian, uint16(0)) // offset: both share the same string bytes
	}
	buf.Write(strBuf.Bytes())
	return buf.Bytes()
}

func buildCmapTable(start, end rune) []byte {
	var sub bytes.Buffer
	binary.Write(&sub, binary.BigEndian, uint16(4))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(4))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(end))
	binary.Write(&sub, binary.BigEndian, uint16(0xFFFF))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(start))
	binary.Write(&sub, binary.BigEndian, uint16(0xFFFF))
	binary.Write(&sub, binary.BigEndian, int16(1))
	binary.Write(&sub, binary.BigEndian, int16(1))
	binary.Write(&sub, binary.BigEndian, uint16(0))
	binary.Write(&sub, binary.BigEndian, uint16(0))

	var cmap bytes.Buffer
	binary.Write(&cmap, binary.BigEndian, uint16(0))
	binary.Write(&cmap, binary.BigEndian, uint16(1))
	binary.Write(&cmap, binary.BigEndian, uint16(3))
	binary.Write(&cmap, binary.BigEndian, uint16(1))
	binary.Write(&cmap, binary.BigEndian, uint32(12))
	cmap.Write(sub.Bytes())
	return cmap.Bytes()
}
