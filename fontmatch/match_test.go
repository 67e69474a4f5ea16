package fontmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fontkit/fontkit/fontcache"
	"github.com/go-fontkit/fontkit/urange"
)

func addMemoryFont(t *testing.T, c *fontcache.Cache, label, family string, rangeStart, rangeEnd rune) fontcache.FontId {
	t.Helper()
	data := buildMinimalFont(family, rangeStart, rangeEnd)
	ids, tr := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: label, Bytes: data}}, nil)
	require.Empty(t, tr.Entries())
	require.False(t, ids[0].IsZero())
	return ids[0]
}

func TestMatchWildcardOnEmptyCache(t *testing.T) {
	c := fontcache.NewCache()
	match, _ := Match(NewPattern(), c, Options{})
	assert.Nil(t, match)
}

func TestMatchByNameReturnsMemoryFont(t *testing.T) {
	c := fontcache.NewCache()
	id := addMemoryFont(t, c, "X", "Test", 0x0020, 0x007E)

	p := NewPattern()
	p.Name = "Test"
	match, _ := Match(p, c, Options{})
	require.NotNil(t, match)
	assert.Equal(t, id, match.ID)
	assert.Equal(t, "memory:X", mustPath(t, c, match.ID))
}

func mustPath(t *testing.T, c *fontcache.Cache, id fontcache.FontId) string {
	t.Helper()
	return c.GetPath(id)
}

func TestMatchPrefersBoldFaceForBoldPattern(t *testing.T) {
	c := fontcache.NewCache()
	regData := buildMinimalFontWithWeight("Arial", 0x0041, 0x005A, 400)
	boldData := buildMinimalFontWithWeight("Arial", 0x0041, 0x005A, 700)
	_, tr1 := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: "reg", Bytes: regData}}, nil)
	ids2, tr2 := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: "bold", Bytes: boldData}}, nil)
	require.Empty(t, tr1.Entries())
	require.Empty(t, tr2.Entries())

	p := NewPattern()
	p.Family = "Arial"
	p.Bold = True
	match, tr := Match(p, c, Options{})
	require.NotNil(t, match)
	assert.Equal(t, ids2[0], match.ID)

	foundStyleMismatch := false
	for _, e := range tr.Entries() {
		if e.Reason.String() == "style mismatch" {
			foundStyleMismatch = true
		}
	}
	assert.True(t, foundStyleMismatch, "the non-bold Arial should be rejected with a style mismatch trace")
}

func TestWeightTieBreakBelow500PrefersLower(t *testing.T) {
	dist300, pen300 := weightScore(400, 300)
	dist500, pen500 := weightScore(400, 500)
	assert.Equal(t, dist300, dist500)
	assert.Less(t, pen300, pen500, "at equal distance, weight<=500 should prefer the lighter candidate")
}

func TestWeightTieBreakAbove500PrefersHigher(t *testing.T) {
	dist500, pen500 := weightScore(600, 500)
	dist700, pen700 := weightScore(600, 700)
	assert.Equal(t, dist500, dist700)
	assert.Less(t, pen700, pen500, "at equal distance, weight>500 should prefer the heavier candidate")
}

func TestUnicodeRangeHardFilter(t *testing.T) {
	c := fontcache.NewCache()
	addMemoryFont(t, c, "X", "Test", 0x0020, 0x007E)

	p := NewPattern()
	p.UnicodeRanges = []urange.Range{{Start: 0x4E00, End: 0x4E01}}
	match, tr := Match(p, c, Options{})
	assert.Nil(t, match)
	require.NotEmpty(t, tr.Entries())
	assert.Equal(t, "unicode range mismatch", tr.Entries()[0].Reason.String())
}

func TestFallbacksRankedByUncoveredCodepoints(t *testing.T) {
	c := fontcache.NewCache()
	primary := addMemoryFont(t, c, "primary", "Primary", 0x0041, 0x005A)
	smallFallback := addMemoryFont(t, c, "small", "Small", 0x00C0, 0x00C5) // 6 codepoints, none overlapping
	bigFallback := addMemoryFont(t, c, "big", "Big", 0x4E00, 0x4FFF)      // many codepoints, none overlapping

	// The wildcard pattern makes all three fonts candidates; with equal
	// weight, stretch and match quality, insertion order picks "primary".
	match, _ := Match(NewPattern(), c, Options{})
	require.NotNil(t, match)
	assert.Equal(t, primary, match.ID)
	require.Len(t, match.Fallbacks, 2)
	assert.Equal(t, bigFallback, match.Fallbacks[0].ID, "the fallback covering more new codepoints should rank first")
	assert.Equal(t, smallFallback, match.Fallbacks[1].ID)
}

func TestMatchAllWildcardOnEmptyCache(t *testing.T) {
	c := fontcache.NewCache()
	matches, _ := MatchAll(NewPattern(), c, Options{})
	assert.Nil(t, matches)
}

func TestMatchAllReturnsEveryCandidateWithItsOwnCoverage(t *testing.T) {
	c := fontcache.NewCache()
	light := addMemoryFont(t, c, "light", "Arial", 0x0041, 0x005A)
	boldData := buildMinimalFontWithWeight("Arial", 0x0041, 0x005A, 700)
	ids, tr := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: "bold", Bytes: boldData}}, nil)
	require.Empty(t, tr.Entries())
	bold := ids[0]

	p := NewPattern()
	p.Family = "Arial"
	matches, _ := MatchAll(p, c, Options{})
	require.Len(t, matches, 2)

	for _, m := range matches {
		assert.NotEmpty(t, m.Coverage, "each candidate must carry its own coverage, not just an id")
		assert.Nil(t, m.Fallbacks, "MatchAll entries are a flat list, not nested primary/fallback pairs")
	}

	ranked := []fontcache.FontId{matches[0].ID, matches[1].ID}
	assert.Contains(t, ranked, light)
	assert.Contains(t, ranked, bold)
}

func TestMatchAllUsesSameRankingAsMatchPrimary(t *testing.T) {
	c := fontcache.NewCache()
	regData := buildMinimalFontWithWeight("Arial", 0x0041, 0x005A, 400)
	boldData := buildMinimalFontWithWeight("Arial", 0x0041, 0x005A, 700)
	regIDs, tr1 := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: "reg", Bytes: regData}}, nil)
	boldIDs, tr2 := c.AddMemoryFonts([]fontcache.MemoryFont{{Label: "bold", Bytes: boldData}}, nil)
	require.Empty(t, tr1.Entries())
	require.Empty(t, tr2.Entries())

	p := NewPattern()
	p.Family = "Arial"
	p.Bold = True

	match, _ := Match(p, c, Options{})
	require.NotNil(t, match)

	matches, _ := MatchAll(p, c, Options{})
	require.NotEmpty(t, matches)
	assert.Equal(t, match.ID, matches[0].ID, "MatchAll's first entry must agree with Match's chosen primary")
	assert.Equal(t, boldIDs[0], matches[0].ID)
	if len(matches) > 1 {
		assert.Equal(t, regIDs[0], matches[1].ID)
	}
}

func TestMatchAllExcludesHardFilterRejects(t *testing.T) {
	c := fontcache.NewCache()
	addMemoryFont(t, c, "X", "Test", 0x0020, 0x007E)

	p := NewPattern()
	p.UnicodeRanges = []urange.Range{{Start: 0x4E00, End: 0x4E01}}
	matches, tr := MatchAll(p, c, Options{})
	assert.Nil(t, matches)
	require.NotEmpty(t, tr.Entries())
	assert.Equal(t, "unicode range mismatch", tr.Entries()[0].Reason.String())
}
