package fontfile

import "encoding/binary"

// parseOS2Table extracts weight, width (stretch), and the style bits OS/2
// can determine on its own (italic/oblique/bold). Missing OS/2 yields the
// documented defaults: weight 400, stretch 5, no style bits set
// (spec.md §6).
func parseOS2Table(data []byte, dir tableDirectory) (weight uint16, stretch uint8, style StyleFlags) {
	raw := tableBytes(data, dir, "OS/2")
	if raw == nil || len(raw) < 64 {
		return 400, 5, StyleFlags{}
	}

	usWeightClass := binary.BigEndian.Uint16(raw[4:6])
	usWidthClass := binary.BigEndian.Uint16(raw[6:8])
	fsSelection := binary.BigEndian.Uint16(raw[62:64])

	weight = snapWeight(usWeightClass)
	stretch = clampStretch(usWidthClass)

	const (
		fsItalic  = 1 << 0
		fsBold    = 1 << 5
		fsOblique = 1 << 9
	)
	style.Italic = fsSelection&fsItalic != 0
	style.Oblique = fsSelection&fsOblique != 0
	style.Bold = fsSelection&fsBold != 0

	if len(raw) >= 42 {
		panoseProportion := raw[32+3]
		if panoseProportion == 9 {
			style.Monospace = true
		}
	}
	return weight, stretch, style
}

func snapWeight(w uint16) uint16 {
	if w == 0 {
		return 400
	}
	if w < 100 {
		w = 100
	}
	if w > 900 {
		w = 900
	}
	// snap to the nearest multiple of 100
	return uint16(((w + 50) / 100) * 100)
}

func clampStretch(w uint16) uint8 {
	if w == 0 {
		return 5
	}
	if w > 9 {
		return 9
	}
	return uint8(w)
}

type macStyleBits struct {
	bold   bool
	italic bool
}

// parseHeadMacStyle reads head.macStyle's bold/italic bits, returning nil
// if the head table is absent or too short.
func parseHeadMacStyle(data []byte, dir tableDirectory) *macStyleBits {
	raw := tableBytes(data, dir, "head")
	if raw == nil || len(raw) < 46 {
		return nil
	}
	macStyle := binary.BigEndian.Uint16(raw[44:46])
	return &macStyleBits{
		bold:   macStyle&0x1 != 0,
		italic: macStyle&0x2 != 0,
	}
}

// isFixedPitch reports post.isFixedPitch != 0, per spec.md §4.A's
// monospace detection rule. Absent post table means false, not an error.
func isFixedPitch(data []byte, dir tableDirectory) bool {
	raw := tableBytes(data, dir, "post")
	if raw == nil || len(raw) < 16 {
		return false
	}
	isFixed := binary.BigEndian.Uint32(raw[12:16])
	return isFixed != 0
}
