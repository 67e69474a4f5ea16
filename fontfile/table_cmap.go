package fontfile

import (
	"encoding/binary"

	"github.com/go-fontkit/fontkit/urange"
)

// parseCmapTable extracts Unicode coverage from the 'cmap' table, preferring
// subtable formats 4 (BMP) and 12 (full Unicode), and unioning the
// codepoints from every usable subtable (spec.md §4.A). If no usable
// subtable is present, coverage is empty; the face is still indexed but
// will never satisfy a coverage constraint.
func parseCmapTable(data []byte, dir tableDirectory) []urange.Range {
	raw := tableBytes(data, dir, "cmap")
	if raw == nil || len(raw) < 4 {
		return nil
	}
	numTables := binary.BigEndian.Uint16(raw[2:4])

	var ranges []urange.Range
	for i := uint16(0); i < numTables; i++ {
		recStart := 4 + int(i)*8
		if recStart+8 > len(raw) {
			break
		}
		platformID := binary.BigEndian.Uint16(raw[recStart : recStart+2])
		encodingID := binary.BigEndian.Uint16(raw[recStart+2 : recStart+4])
		offset := binary.BigEndian.Uint32(raw[recStart+4 : recStart+8])
		if int(offset) >= len(raw) {
			continue
		}
		// Only consider subtables that plausibly map Unicode codepoints:
		// platform 3 (Windows) encodings 1 (BMP) and 10 (full Unicode),
		// platform 0 (Unicode, any encoding).
		isUnicode := platformID == 0 || (platformID == 3 && (encodingID == 1 || encodingID == 10))
		if !isUnicode {
			continue
		}
		sub := raw[offset:]
		if len(sub) < 2 {
			continue
		}
		format := binary.BigEndian.Uint16(sub[0:2])
		switch format {
		case 12:
			ranges = append(ranges, parseCmapFormat12(sub)...)
		case 4:
			ranges = append(ranges, parseCmapFormat4(sub)...)
		}
	}
	return urange.SortMerge(ranges)
}

func parseCmapFormat4(sub []byte) []urange.Range {
	if len(sub) < 14 {
		return nil
	}
	segCountX2 := binary.BigEndian.Uint16(sub[6:8])
	segCount := int(segCountX2 / 2)
	endCodeOff := 14
	if endCodeOff+segCount*2 > len(sub) {
		return nil
	}
	startCodeOff := endCodeOff + segCount*2 + 2 // skip reservedPad
	if startCodeOff+segCount*2 > len(sub) {
		return nil
	}

	ranges := make([]urange.Range, 0, segCount)
	for i := 0; i < segCount; i++ {
		end := binary.BigEndian.Uint16(sub[endCodeOff+i*2:])
		start := binary.BigEndian.Uint16(sub[startCodeOff+i*2:])
		if start == 0xFFFF && end == 0xFFFF {
			// terminating sentinel segment, never a real mapping
			continue
		}
		if start > end {
			continue
		}
		ranges = append(ranges, urange.Range{Start: uint32(start), End: uint32(end)})
	}
	return ranges
}

func parseCmapFormat12(sub []byte) []urange.Range {
	if len(sub) < 16 {
		return nil
	}
	numGroups := binary.BigEndian.Uint32(sub[12:16])
	ranges := make([]urange.Range, 0, numGroups)
	for i := uint32(0); i < numGroups; i++ {
		start := 16 + i*12
		if int(start+12) > len(sub) {
			break
		}
		startChar := binary.BigEndian.Uint32(sub[start : start+4])
		endChar := binary.BigEndian.Uint32(sub[start+4 : start+8])
		if startChar > endChar {
			continue
		}
		ranges = append(ranges, urange.Range{Start: startChar, End: endChar})
	}
	return ranges
}
