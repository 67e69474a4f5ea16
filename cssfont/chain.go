package cssfont

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/go-fontkit/fontkit/fontcache"
	"github.com/go-fontkit/fontkit/fontmatch"
	"github.com/go-fontkit/fontkit/urange"
)

// CssFallbackGroup is one entry of a resolved FontChain: the CSS name that
// produced it (the original stack entry, generic or concrete) paired with
// whatever the Pattern Matcher found for its expanded preference list.
// A family that resolved to nothing still contributes a group with
// HasMatch false, because css_source labeling depends on positional
// identity within the chain (spec.md §4.G).
type CssFallbackGroup struct {
	CssName   string
	HasMatch  bool
	Primary   fontcache.FontId
	Coverage  []urange.Range
	Fallbacks []fontmatch.FontMatchNoFallback
}

// FontChain is the immutable, memoized output of ChainResolver.Resolve: an
// ordered list of CssFallbackGroups plus the original stack for
// introspection (spec.md §3).
type FontChain struct {
	Stack  []string
	Groups []CssFallbackGroup
}

// ChainResolver resolves CSS font-family stacks against a Cache, memoizing
// by a normalized (stack, weight, italic, oblique) key under a read/write
// lock with the read-fast-path / double-checked-insertion pattern
// (spec.md §5, §9).
type ChainResolver struct {
	cache *fontcache.Cache

	mu   sync.RWMutex
	memo map[string]*FontChain
	fold cases.Caser
}

// NewChainResolver builds a resolver bound to cache. The resolver holds no
// exclusive lock on cache itself; it only calls fontmatch.Match, which is a
// read-only query (spec.md §5).
func NewChainResolver(cache *fontcache.Cache) *ChainResolver {
	return &ChainResolver{
		cache: cache,
		memo:  make(map[string]*FontChain),
		fold:  cases.Fold(),
	}
}

// Resolve expands and matches families against the resolver's cache,
// returning a memoized FontChain. Two calls with equal (families, weight,
// italic, oblique) return the same chain instance (spec.md §8 Property 7).
func (r *ChainResolver) Resolve(families []string, weight uint16, italic, oblique bool) *FontChain {
	if len(families) == 0 {
		return &FontChain{}
	}

	key := r.memoKey(families, weight, italic, oblique)

	r.mu.RLock()
	if chain, ok := r.memo[key]; ok {
		r.mu.RUnlock()
		return chain
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if chain, ok := r.memo[key]; ok {
		return chain
	}

	chain := &FontChain{Stack: append([]string(nil), families...)}
	for _, family := range families {
		chain.Groups = append(chain.Groups, r.resolveFamily(family, weight, italic, oblique))
	}
	r.memo[key] = chain
	return chain
}

// resolveFamily tries every concrete name in family's expansion preference
// list in order, returning the first non-empty match (spec.md §4.F: "first
// available wins per platform"). A concrete (non-generic) name expands to
// itself, so this also covers the plain single-candidate case.
func (r *ChainResolver) resolveFamily(family string, weight uint16, italic, oblique bool) CssFallbackGroup {
	for _, candidate := range ExpandGeneric(family) {
		p := fontmatch.NewPattern()
		p.Family = candidate
		p.Weight = weight
		p.Italic = boolTri(italic)
		p.Oblique = boolTri(oblique)

		match, _ := fontmatch.Match(p, r.cache, fontmatch.Options{})
		if match == nil {
			continue
		}
		return CssFallbackGroup{
			CssName:   family,
			HasMatch:  true,
			Primary:   match.ID,
			Coverage:  match.Coverage,
			Fallbacks: match.Fallbacks,
		}
	}
	return CssFallbackGroup{CssName: family}
}

func boolTri(b bool) fontmatch.TriState {
	if b {
		return fontmatch.True
	}
	return fontmatch.False
}

// memoKey normalizes the chain inputs to a deterministic string: each
// family is Unicode case-folded and NFC-normalized before joining, so
// equivalent but differently-encoded stacks hash identically (spec.md §9).
func (r *ChainResolver) memoKey(families []string, weight uint16, italic, oblique bool) string {
	var b strings.Builder
	for i, f := range families {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(norm.NFC.String(r.fold.String(f)))
	}
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(int(weight)))
	b.WriteByte(',')
	b.WriteString(strconv.FormatBool(italic))
	b.WriteByte(',')
	b.WriteString(strconv.FormatBool(oblique))
	return b.String()
}
