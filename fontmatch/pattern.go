// Package fontmatch scores and filters a font cache against a declarative
// Pattern, producing a primary match plus a coverage-ordered fallback list
// and a trace explaining every rejected candidate (spec.md §4.E).
package fontmatch

import "github.com/go-fontkit/fontkit/urange"

// TriState is a three-valued boolean used by style attributes in a
// Pattern: True/False require the attribute to match exactly, DontCare
// disables that attribute's hard filter (spec.md §9).
type TriState uint8

const (
	DontCare TriState = iota
	True
	False
)

// NormalWeight and NormalStretch are the CSS "normal" values; a wildcard
// Pattern (every boolean DontCare, these two values, no name/family/ranges)
// matches every font in the cache (spec.md §3).
const (
	NormalWeight  uint16 = 400
	NormalStretch uint8  = 5
)

// Pattern is the matcher's declarative query (spec.md §3). The zero value
// is not itself the wildcard pattern (Weight/Stretch would be 0); use
// NewPattern to get one.
type Pattern struct {
	Name   string
	Family string

	Italic    TriState
	Oblique   TriState
	Bold      TriState
	Monospace TriState
	Condensed TriState

	Weight  uint16 // 100..900
	Stretch uint8  // 1..9

	UnicodeRanges []urange.Range // sorted, merged
}

// NewPattern returns the wildcard pattern: every boolean DontCare, normal
// weight and stretch, no name/family/range constraints. Matching it
// against a non-empty cache always succeeds (spec.md §3).
func NewPattern() Pattern {
	return Pattern{Weight: NormalWeight, Stretch: NormalStretch}
}
