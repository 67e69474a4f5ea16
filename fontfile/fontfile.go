// Package fontfile decodes the bytes of a font container (TrueType,
// OpenType, or a TrueType/OpenType collection) into the metadata,
// Unicode coverage, and style flags the rest of fontkit indexes and
// matches on. It never rasterizes a glyph; it only reads tables.
package fontfile

import (
	"encoding/binary"
	"fmt"

	"github.com/go-fontkit/fontkit/urange"
	xsfnt "golang.org/x/image/font/sfnt"
)

// ErrUnrecognizedFormat is returned by Probe when the byte slice does not
// start with a recognized SFNT or collection magic number.
var ErrUnrecognizedFormat = fmt.Errorf("fontfile: unrecognized font format")

const (
	tagOTTO = 0x4F54544F // "OTTO", CFF-flavored OpenType
	tagTrue = 0x74727565 // "true", old-style TrueType
	tagTTF  = 0x00010000 // version 1.0 TrueType/OpenType
	tagTTC  = 0x74746366 // "ttcf", collection header
)

// Probe detects the container format and returns the number of faces it
// holds (1 for a single-face TTF/OTF, N for a TTC/OTC). It returns
// ErrUnrecognizedFormat for anything else.
func Probe(data []byte) (faceCount int, err error) {
	if len(data) < 4 {
		return 0, ErrUnrecognizedFormat
	}
	tag := binary.BigEndian.Uint32(data[:4])
	switch tag {
	case tagTTC:
		if len(data) < 16 {
			if n, err := faceProbe(data); err == nil {
				return n, nil
			}
			return 0, ErrUnrecognizedFormat
		}
		n := binary.BigEndian.Uint32(data[12:16])
		if n == 0 {
			return 0, ErrUnrecognizedFormat
		}
		// Cross-check against x/image/font/sfnt's own collection parser;
		// prefer our header read but fall back to it if they disagree
		// and ours looks implausible (e.g. a truncated/corrupt header).
		if xn, err := faceProbe(data); err == nil && (uint32(xn) != n) && n > uint32(len(data)/12) {
			return xn, nil
		}
		return int(n), nil
	case tagOTTO, tagTrue, tagTTF:
		return 1, nil
	default:
		if n, err := faceProbe(data); err == nil {
			return n, nil
		}
		return 0, ErrUnrecognizedFormat
	}
}

// Metadata holds the optional strings extracted from a face's name table.
// A field is "absent" when it is the empty string.
type Metadata struct {
	Family             string
	Subfamily          string
	FullName           string
	PostScriptName     string
	PreferredFamily    string
	PreferredSubfamily string
	Version            string
	Designer           string
	DesignerURL        string
	Manufacturer       string
	ManufacturerURL    string
	License            string
	LicenseURL         string
	Copyright          string
	Trademark          string
	UniqueID           string
}

// StyleFlags are the boolean style attributes detected at parse time.
type StyleFlags struct {
	Italic    bool
	Oblique   bool
	Bold      bool
	Monospace bool
	Condensed bool
}

// ParsedFace is the result of parsing one face out of a font container.
type ParsedFace struct {
	Metadata Metadata
	Coverage []urange.Range // sorted, merged
	Style    StyleFlags
	Weight   uint16 // 100..900, multiple of 100
	Stretch  uint8  // 1..9
}

// tableDirectory is the set of table records for a single face, keyed by
// 4-byte tag, plus the absolute file offset each table's bytes start at.
type tableDirectory map[string]tableRecord

type tableRecord struct {
	offset uint32
	length uint32
}

// Parse extracts name, cmap, OS/2, head, and post information for the face
// at faceIndex (0 for single-face containers). Structural errors in any of
// these tables are non-fatal: a missing or malformed table degrades to
// defaults (spec.md §4.A / §6) rather than aborting the whole parse; only
// a malformed table *directory* itself (the face cannot be located at all)
// returns an error, since at that point there is nothing left to parse.
func Parse(data []byte, faceIndex int) (ParsedFace, error) {
	dirOffset, err := faceDirectoryOffset(data, faceIndex)
	if err != nil {
		return ParsedFace{}, err
	}
	dir, err := readTableDirectory(data, dirOffset)
	if err != nil {
		return ParsedFace{}, err
	}

	var pf ParsedFace
	pf.Metadata = parseNameTable(data, dir)
	pf.Coverage = parseCmapTable(data, dir)

	weight, stretch, style := parseOS2Table(data, dir)
	pf.Weight = weight
	pf.Stretch = stretch
	pf.Style = style

	if mac := parseHeadMacStyle(data, dir); mac != nil {
		pf.Style.Bold = pf.Style.Bold || mac.bold
		pf.Style.Italic = pf.Style.Italic || mac.italic
	}
	if isFixedPitch(data, dir) {
		pf.Style.Monospace = true
	}
	if pf.Weight == 0 {
		pf.Weight = 400
	}
	if pf.Weight >= 600 {
		pf.Style.Bold = true
	}
	if pf.Stretch == 0 {
		pf.Stretch = 5
	}
	if pf.Stretch <= 3 {
		pf.Style.Condensed = true
	}
	if containsFold(pf.Metadata.Subfamily, "condensed") || containsFold(pf.Metadata.FullName, "condensed") {
		pf.Style.Condensed = true
	}

	return pf, nil
}

func faceDirectoryOffset(data []byte, faceIndex int) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrUnrecognizedFormat
	}
	tag := binary.BigEndian.Uint32(data[:4])
	if tag == tagTTC {
		if len(data) < 16 {
			return 0, ErrUnrecognizedFormat
		}
		n := int(binary.BigEndian.Uint32(data[12:16]))
		if faceIndex < 0 || faceIndex >= n {
			return 0, fmt.Errorf("fontfile: face index %d out of range (0..%d)", faceIndex, n-1)
		}
		base := 16 + faceIndex*4
		if len(data) < base+4 {
			return 0, ErrUnrecognizedFormat
		}
		return binary.BigEndian.Uint32(data[base : base+4]), nil
	}
	if faceIndex != 0 {
		return 0, fmt.Errorf("fontfile: face index %d requested on single-face container", faceIndex)
	}
	return 0, nil
}

func readTableDirectory(data []byte, dirOffset uint32) (tableDirectory, error) {
	if uint32(len(data)) < dirOffset+12 {
		return nil, ErrUnrecognizedFormat
	}
	numTables := binary.BigEndian.Uint16(data[dirOffset+4 : dirOffset+6])
	dir := make(tableDirectory, numTables)
	recOff := dirOffset + 12
	for i := uint16(0); i < numTables; i++ {
		start := recOff + uint32(i)*16
		if uint32(len(data)) < start+16 {
			break
		}
		tag := string(data[start : start+4])
		offset := binary.BigEndian.Uint32(data[start+8 : start+12])
		length := binary.BigEndian.Uint32(data[start+12 : start+16])
		dir[tag] = tableRecord{offset: offset, length: length}
	}
	if len(dir) == 0 {
		return nil, ErrUnrecognizedFormat
	}
	return dir, nil
}

func tableBytes(data []byte, dir tableDirectory, tag string) []byte {
	rec, ok := dir[tag]
	if !ok {
		return nil
	}
	end := rec.offset + rec.length
	if uint32(len(data)) < end || end < rec.offset {
		return nil
	}
	return data[rec.offset:end]
}

func containsFold(s, substr string) bool {
	if s == "" {
		return false
	}
	return indexFold(s, substr) >= 0
}

// indexFold is a tiny ASCII-case-insensitive substring search, sufficient
// for matching English style keywords ("Condensed", "Italic", ...) inside
// name table strings. Full Unicode case folding is handled by
// fontcache's indexes, not here.
func indexFold(s, substr string) int {
	ls, lsub := len(s), len(substr)
	if lsub == 0 {
		return 0
	}
	for i := 0; i+lsub <= ls; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			a, b := s[i+j], substr[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// faceProbe uses golang.org/x/image/font/sfnt purely to cross-check the
// number of faces in a collection; parseNameTable/parseCmapTable/
// parseOS2Table below read raw table bytes directly because x/image/font/sfnt
// has no exported access to OS/2, head, post fields or to cmap's range
// structure (see SPEC_FULL.md §4.A).
func faceProbe(data []byte) (int, error) {
	col, err := xsfnt.ParseCollection(data)
	if err == nil {
		return col.NumFonts(), nil
	}
	if _, err2 := xsfnt.Parse(data); err2 == nil {
		return 1, nil
	}
	return 0, err
}
