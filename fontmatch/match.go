package fontmatch

import (
	"sort"
	"strings"

	"github.com/go-fontkit/fontkit/fontcache"
	"github.com/go-fontkit/fontkit/trace"
	"github.com/go-fontkit/fontkit/urange"
)

// FontMatchNoFallback is a fallback entry: a font id plus the coverage used
// to rank it, without its own nested fallback list (spec.md §3).
type FontMatchNoFallback struct {
	ID       fontcache.FontId
	Coverage []urange.Range
}

// FontMatch is the result of a successful Match: a primary font plus a
// coverage-ordered fallback list (spec.md §3).
type FontMatch struct {
	ID        fontcache.FontId
	Coverage  []urange.Range
	Fallbacks []FontMatchNoFallback
}

// Options configures a Match call beyond the pattern itself.
type Options struct {
	// MaxFallbacks truncates the fallback list. 0 means unlimited, matching
	// the core's default (spec.md §4.E); callers wanting a cap should set
	// this explicitly.
	MaxFallbacks int
	// TraceCap bounds how many trace entries are recorded. 0 uses
	// trace.DefaultCap.
	TraceCap int
}

type scoredCandidate struct {
	id             fontcache.FontId
	rec            fontcache.FontRecord
	weightDist     uint16
	weightPenalty  uint8
	stretchDist    uint8
	stretchPenalty uint8
	quality        uint8
}

// scoreSurvivors runs candidate selection and the hard filter, scores every
// survivor against pattern, and sorts the result by the primary-selection
// comparator (spec.md §4.E step 3: weight distance/penalty, then stretch
// distance/penalty, then name-match quality, then insertion order). Both
// Match and MatchAll share this so a candidate's rank is computed exactly
// once, the same way, regardless of which entry point is called.
func scoreSurvivors(pattern Pattern, cache *fontcache.Cache, tr *trace.Log) []scoredCandidate {
	candidateIDs := selectCandidateSet(pattern, cache)
	if len(candidateIDs) == 0 {
		return nil
	}

	survivors := make([]scoredCandidate, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		rec, ok := cache.Get(id)
		if !ok {
			continue
		}
		path := rec.Origin.Render()

		if reason, expected, actual, ok := hardFilterReject(pattern, rec); !ok {
			tr.Add(trace.Msg{Level: trace.Debug, Path: path, Reason: reason, Expected: expected, Actual: actual})
			continue
		}

		survivors = append(survivors, scoredCandidate{
			id:      id,
			rec:     rec,
			quality: matchQuality(pattern, rec),
		})
	}

	if len(survivors) == 0 {
		return nil
	}

	for i := range survivors {
		survivors[i].weightDist, survivors[i].weightPenalty = weightScore(pattern.Weight, survivors[i].rec.Weight)
		survivors[i].stretchDist, survivors[i].stretchPenalty = stretchScore(pattern.Stretch, survivors[i].rec.Stretch)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.weightDist != b.weightDist {
			return a.weightDist < b.weightDist
		}
		if a.weightPenalty != b.weightPenalty {
			return a.weightPenalty < b.weightPenalty
		}
		if a.stretchDist != b.stretchDist {
			return a.stretchDist < b.stretchDist
		}
		if a.stretchPenalty != b.stretchPenalty {
			return a.stretchPenalty < b.stretchPenalty
		}
		if a.quality != b.quality {
			return a.quality < b.quality
		}
		return a.rec.InsertionOrder() < b.rec.InsertionOrder()
	})

	return survivors
}

// Match scores pattern against cache, returning the best primary match (if
// any) plus its ranked fallback list, and a trace of every rejected
// candidate (spec.md §4.E).
func Match(pattern Pattern, cache *fontcache.Cache, opts Options) (*FontMatch, *trace.Log) {
	tr := &trace.Log{Cap: opts.TraceCap}

	survivors := scoreSurvivors(pattern, cache, tr)
	if len(survivors) == 0 {
		return nil, tr
	}

	primary := survivors[0]
	tr.Add(trace.Msg{Level: trace.Info, Path: primary.rec.Origin.Render(), Reason: trace.Success})

	rest := survivors[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		aNot, aTotal := urange.CountNotIn(rest[i].rec.Coverage, primary.rec.Coverage)
		bNot, bTotal := urange.CountNotIn(rest[j].rec.Coverage, primary.rec.Coverage)
		if aNot != bNot {
			return aNot > bNot
		}
		if aTotal != bTotal {
			return aTotal > bTotal
		}
		return rest[i].rec.InsertionOrder() < rest[j].rec.InsertionOrder()
	})
	if opts.MaxFallbacks > 0 && len(rest) > opts.MaxFallbacks {
		rest = rest[:opts.MaxFallbacks]
	}

	fallbacks := make([]FontMatchNoFallback, len(rest))
	for i, c := range rest {
		fallbacks[i] = FontMatchNoFallback{ID: c.id, Coverage: c.rec.Coverage}
	}

	return &FontMatch{ID: primary.id, Coverage: primary.rec.Coverage, Fallbacks: fallbacks}, tr
}

// MatchAll returns every candidate that survives the hard filter, in the
// same weight/stretch/quality/insertion-order ranking Match uses to pick
// its primary, without truncating to a single primary + fallback list.
// Each result's Fallbacks is always nil: this is a flat ranked list, not a
// set of nested primary/fallback pairs. Supplemented from
// fc_cache_query_all (SPEC_FULL.md §9).
func MatchAll(pattern Pattern, cache *fontcache.Cache, opts Options) ([]FontMatch, *trace.Log) {
	tr := &trace.Log{Cap: opts.TraceCap}

	survivors := scoreSurvivors(pattern, cache, tr)
	if len(survivors) == 0 {
		return nil, tr
	}

	matches := make([]FontMatch, len(survivors))
	for i, c := range survivors {
		tr.Add(trace.Msg{Level: trace.Info, Path: c.rec.Origin.Render(), Reason: trace.Success})
		matches[i] = FontMatch{ID: c.id, Coverage: c.rec.Coverage}
	}
	return matches, tr
}

func selectCandidateSet(pattern Pattern, cache *fontcache.Cache) []fontcache.FontId {
	switch {
	case pattern.Name != "":
		ids := cache.LookupByName(pattern.Name)
		if len(ids) == 0 {
			ids = substringScan(cache, pattern.Name, func(r fontcache.FontRecord) []string {
				return []string{r.Metadata.FullName, r.Metadata.PostScriptName}
			})
		}
		return ids
	case pattern.Family != "":
		ids := cache.LookupByFamily(pattern.Family)
		if len(ids) == 0 {
			ids = substringScan(cache, pattern.Family, func(r fontcache.FontRecord) []string {
				return []string{r.Metadata.Family, r.Metadata.PreferredFamily}
			})
		}
		return ids
	default:
		all := cache.IterAll()
		ids := make([]fontcache.FontId, len(all))
		for i, r := range all {
			ids[i] = r.ID
		}
		return ids
	}
}

func substringScan(cache *fontcache.Cache, needle string, fields func(fontcache.FontRecord) []string) []fontcache.FontId {
	var ids []fontcache.FontId
	for _, r := range cache.IterAll() {
		for _, f := range fields(r) {
			if f != "" && containsFold(f, needle) {
				ids = append(ids, r.ID)
				break
			}
		}
	}
	return ids
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// hardFilterReject returns (reason, expected, actual, false) when rec must
// be rejected outright, or ok=true when rec survives to scoring
// (spec.md §4.E step 2).
func hardFilterReject(p Pattern, rec fontcache.FontRecord) (reason trace.Reason, expected, actual string, ok bool) {
	type check struct {
		want TriState
		got  bool
		name string
	}
	checks := []check{
		{p.Italic, rec.Style.Italic, "italic"},
		{p.Oblique, rec.Style.Oblique, "oblique"},
		{p.Bold, rec.Style.Bold, "bold"},
		{p.Monospace, rec.Style.Monospace, "monospace"},
		{p.Condensed, rec.Style.Condensed, "condensed"},
	}
	for _, c := range checks {
		if c.want == DontCare {
			continue
		}
		want := c.want == True
		if want != c.got {
			return trace.StyleMismatch, boolStr(want), boolStr(c.got), false
		}
	}

	// Open Question resolution (spec.md §9): when both Name and Family are
	// set, both must match; Name selects the candidate set, Family is
	// enforced here as an additional hard filter.
	if p.Name != "" && p.Family != "" {
		if !containsFold(rec.Metadata.Family, p.Family) && !containsFold(rec.Metadata.PreferredFamily, p.Family) {
			return trace.FamilyMismatch, p.Family, rec.Metadata.Family, false
		}
	}

	if len(p.UnicodeRanges) > 0 {
		if !urange.Subset(p.UnicodeRanges, rec.Coverage) {
			return trace.UnicodeRangeMismatch, "subset of font coverage", "not a subset", false
		}
	}

	return 0, "", "", true
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func matchQuality(p Pattern, rec fontcache.FontRecord) uint8 {
	switch {
	case p.Name != "":
		if strings.EqualFold(rec.Metadata.FullName, p.Name) || strings.EqualFold(rec.Metadata.PostScriptName, p.Name) {
			return 0
		}
		if p.Family != "" && (strings.EqualFold(rec.Metadata.Family, p.Family) || strings.EqualFold(rec.Metadata.PreferredFamily, p.Family)) {
			return 1
		}
		if containsFold(rec.Metadata.FullName, p.Name) || containsFold(rec.Metadata.PostScriptName, p.Name) {
			return 2
		}
		return 3
	case p.Family != "":
		if strings.EqualFold(rec.Metadata.Family, p.Family) || strings.EqualFold(rec.Metadata.PreferredFamily, p.Family) {
			return 1
		}
		if containsFold(rec.Metadata.Family, p.Family) || containsFold(rec.Metadata.PreferredFamily, p.Family) {
			return 2
		}
		return 3
	default:
		return 3
	}
}

// weightScore implements spec.md §4.E / §8's CSS tie-break: among equal
// |distance|, prefer the side below the target when pattern.weight<=500,
// above when >500.
func weightScore(target, candidate uint16) (dist uint16, penalty uint8) {
	if candidate > target {
		dist = candidate - target
	} else {
		dist = target - candidate
	}
	preferBelow := target <= 500
	if preferBelow {
		if candidate <= target {
			penalty = 0
		} else {
			penalty = 1
		}
	} else {
		if candidate >= target {
			penalty = 0
		} else {
			penalty = 1
		}
	}
	return dist, penalty
}

// stretchScore is weightScore's analogue around NormalStretch (spec.md §4.E).
func stretchScore(target, candidate uint8) (dist uint8, penalty uint8) {
	if candidate > target {
		dist = candidate - target
	} else {
		dist = target - candidate
	}
	preferBelow := target <= NormalStretch
	if preferBelow {
		if candidate <= target {
			penalty = 0
		} else {
			penalty = 1
		}
	} else {
		if candidate >= target {
			penalty = 0
		} else {
			penalty = 1
		}
	}
	return dist, penalty
}
