// Package fontsource enumerates font files from the filesystem, producing
// candidate paths for fontcache to load and parse. It performs no
// parsing itself (spec.md §4.B).
package fontsource

import (
	"os"
	"path/filepath"
	"strings"
)

// Candidate is a font file discovered on disk, not yet read or parsed.
type Candidate struct {
	Path string // canonical (symlink-resolved) absolute path
}

// recognizedExtensions are the container formats fontfile can parse.
var recognizedExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
	".otc": true,
}

// Enumerator produces file candidates by recursively walking Dirs.
// Symlinks are followed by default (spec.md §6 "follow_symlinks" defaults
// true); set DontFollowSymlinks to skip them instead, so the zero
// Enumerator keeps the documented default.
type Enumerator struct {
	Dirs               []string
	DontFollowSymlinks bool
}

// Enumerate walks e.Dirs recursively, filtering by recognized extension
// and breaking symlink loops via a canonicalized-path set
// (spec.md §4.B). Directories that do not exist or are not readable are
// silently skipped: a missing font directory is not an error at this
// layer, since fontcache.Build degrades partial failures to trace entries
// rather than aborting (spec.md §7).
func (e Enumerator) Enumerate() ([]Candidate, error) {
	seen := make(map[string]bool) // canonicalized paths already visited, breaks symlink loops
	var out []Candidate

	for _, dir := range e.Dirs {
		e.walk(dir, seen, &out)
	}
	return out, nil
}

func (e Enumerator) walk(dir string, seen map[string]bool, out *[]Candidate) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if seen[real] {
		return
	}
	seen[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if e.DontFollowSymlinks {
				continue
			}
			target, err := filepath.EvalSymlinks(full)
			if err != nil {
				continue
			}
			targetInfo, err := os.Stat(target)
			if err != nil {
				continue
			}
			if targetInfo.IsDir() {
				e.walk(full, seen, out)
				continue
			}
			full = target
			info = targetInfo
		}
		if info.IsDir() {
			e.walk(full, seen, out)
			continue
		}
		ext := strings.ToLower(filepath.Ext(full))
		if !recognizedExtensions[ext] {
			continue
		}
		canonical, err := filepath.EvalSymlinks(full)
		if err != nil {
			canonical = full
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		*out = append(*out, Candidate{Path: canonical})
	}
}
