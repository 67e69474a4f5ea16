// Package textrun segments UTF-8 text into maximal runs, each assigned to
// a single font chosen from a resolved cssfont.FontChain (spec.md §4.H).
package textrun

import (
	"unicode/utf8"

	"github.com/go-fontkit/fontkit/cssfont"
	"github.com/go-fontkit/fontkit/fontcache"
	"github.com/go-fontkit/fontkit/urange"
)

// ResolvedFontRun is a maximal contiguous substring of the queried text
// assigned to a single chosen font (spec.md §3 "Run").
type ResolvedFontRun struct {
	Text      string // the run's own substring, text[StartByte:EndByte]
	StartByte int
	EndByte   int
	HasFont   bool
	FontID    fontcache.FontId
	CssSource string
}

// QueryForText walks text codepoint-by-codepoint, choosing the best font
// for each from chain's groups in order, and returns the maximal runs that
// result (spec.md §4.H). Non-UTF-8 input yields an empty result rather than
// panicking (spec.md §7 "Invalid argument").
func QueryForText(chain *cssfont.FontChain, text string) []ResolvedFontRun {
	if len(text) == 0 || chain == nil {
		return nil
	}
	if !utf8.ValidString(text) {
		return nil
	}

	var runs []ResolvedFontRun
	var current *ResolvedFontRun

	b := 0
	for b < len(text) {
		cp, size := utf8.DecodeRuneInString(text[b:])

		fontID, hasFont, cssSource := pickFont(chain, cp)
		if isControlOrSpace(cp) && current != nil {
			fontID, hasFont, cssSource = current.FontID, current.HasFont, current.CssSource
		}

		if current != nil && current.HasFont == hasFont && current.FontID == fontID && current.CssSource == cssSource {
			current.EndByte = b + size
		} else {
			if current != nil {
				current.Text = text[current.StartByte:current.EndByte]
				runs = append(runs, *current)
			}
			current = &ResolvedFontRun{
				StartByte: b,
				EndByte:   b + size,
				HasFont:   hasFont,
				FontID:    fontID,
				CssSource: cssSource,
			}
		}
		b += size
	}
	if current != nil {
		current.Text = text[current.StartByte:current.EndByte]
		runs = append(runs, *current)
	}
	return runs
}

// isControlOrSpace reports whether cp is ASCII whitespace or a control
// character, which never forces a new run (spec.md §4.H "Control-character
// policy": most fonts cover them, so they inherit the previous run's font).
func isControlOrSpace(cp rune) bool {
	return cp <= 0x20 || cp == 0x7F
}

// pickFont chooses the font for cp by walking chain's groups in order:
// each group's primary first, then its fallbacks, the first coverage hit
// wins with that group's CssName (spec.md §4.H step 3, §8 Property 8
// "monotonic coverage preference").
func pickFont(chain *cssfont.FontChain, cp rune) (id fontcache.FontId, hasFont bool, cssSource string) {
	var lastGroupName string
	for _, g := range chain.Groups {
		if !g.HasMatch {
			lastGroupName = g.CssName
			continue
		}
		lastGroupName = g.CssName
		if urange.Contains(g.Coverage, cp) {
			return g.Primary, true, g.CssName
		}
		for _, fb := range g.Fallbacks {
			if urange.Contains(fb.Coverage, cp) {
				return fb.ID, true, g.CssName
			}
		}
	}
	return fontcache.FontId{}, false, lastGroupName
}
