package fontcache

import (
	"fmt"

	"github.com/go-fontkit/fontkit/fontfile"
	"github.com/go-fontkit/fontkit/urange"
)

// SourceKind distinguishes a font backed by a file on disk from one
// supplied in-memory by the caller.
type SourceKind uint8

const (
	FileOrigin SourceKind = iota
	MemoryOrigin
)

// Origin identifies where a FontRecord's bytes came from.
type Origin struct {
	Kind      SourceKind
	Path      string // canonical filesystem path, FileOrigin only
	Label     string // caller-supplied identifier, MemoryOrigin only
	FaceIndex int    // face index within the container (0 for single-face)
}

// Render returns the canonical path string for an Origin: the filesystem
// path for FileOrigin, or "memory:<label>" for MemoryOrigin
// (spec.md §6 "Memory font URI").
func (o Origin) Render() string {
	if o.Kind == MemoryOrigin {
		return fmt.Sprintf("memory:%s", o.Label)
	}
	return o.Path
}

// Metadata is the set of optional strings a font's name table may carry.
type Metadata = fontfile.Metadata

// StyleFlags are the boolean style attributes resolved at parse time.
type StyleFlags = fontfile.StyleFlags

// FontRecord is an immutable cache entry: the canonical description of one
// face, as extracted by fontfile and indexed by Cache. All fields are
// read-only after construction; other components only ever hold the
// FontId and borrow the record via Cache.Get (spec.md §3 "Ownership").
type FontRecord struct {
	ID       FontId
	Origin   Origin
	Metadata Metadata
	Coverage []urange.Range // sorted, merged
	Style    StyleFlags
	Weight   uint16 // 100..900
	Stretch  uint8  // 1..9

	insertionOrder int // used as the stable matcher tie-break
}

// InsertionOrder returns the position at which this record was inserted
// into its Cache, used by fontmatch as the final, stable tie-break
// (spec.md §4.E step 3).
func (r FontRecord) InsertionOrder() int { return r.insertionOrder }

// dedupKey is the identity used to silently ignore duplicate (re-)adds,
// per spec.md §4.C: (canonical_path, face_index) for files,
// (label, face_index) for memory fonts.
type dedupKey struct {
	kind      SourceKind
	key       string
	faceIndex int
}

func recordDedupKey(o Origin) dedupKey {
	if o.Kind == MemoryOrigin {
		return dedupKey{kind: MemoryOrigin, key: o.Label, faceIndex: o.FaceIndex}
	}
	return dedupKey{kind: FileOrigin, key: o.Path, faceIndex: o.FaceIndex}
}

// newRecord builds a FontRecord from a parsed face plus its origin.
func newRecord(origin Origin, pf fontfile.ParsedFace) FontRecord {
	return FontRecord{
		ID:       NewFontID(),
		Origin:   origin,
		Metadata: pf.Metadata,
		Coverage: pf.Coverage,
		Style:    pf.Style,
		Weight:   pf.Weight,
		Stretch:  pf.Stretch,
	}
}

// FontSummary is the lightweight per-font listing used by Cache.ListFonts
// (supplemented from original_source/ffi's fc_cache_list_fonts, see
// SPEC_FULL.md §9).
type FontSummary struct {
	ID     FontId
	Name   string // full name, or family if full name is absent
	Family string
}
