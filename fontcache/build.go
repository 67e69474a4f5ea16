package fontcache

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/go-fontkit/fontkit/fontfile"
	"github.com/go-fontkit/fontkit/fontsource"
	"github.com/go-fontkit/fontkit/trace"
)

// Logger is a type that can log non-fatal warnings encountered while
// scanning or parsing fonts. Any *log.Logger satisfies this.
type Logger interface {
	Printf(format string, args ...interface{})
}

// BuildConfig configures a cache build (spec.md §6).
type BuildConfig struct {
	// FontDirs overrides the platform default scan list. A nil slice means
	// "use fontsource.DefaultFontDirectories".
	FontDirs []string
	// DontFollowSymlinks skips symlinks during scanning. Symlinks are
	// followed by default (spec.md §6 "follow_symlinks" defaults true); the
	// flag is inverted from the spec's own naming so the zero value of
	// BuildConfig keeps the documented default instead of silently opting
	// out of it.
	DontFollowSymlinks bool
	// Parallelism is the worker-pool size; 0 means auto (runtime.NumCPU()).
	Parallelism int
	// TraceCap bounds the number of trace entries recorded during Build.
	// 0 means trace.DefaultCap.
	TraceCap int
}

// Build scans the configured font sources, parses every discovered face in
// parallel, and returns a populated, immediately-usable Cache plus a trace
// of I/O and parse failures encountered along the way, with one Debug
// entry for each face added to the cache. Build never returns
// an error for a partial failure (spec.md §4.C, §7): an unreadable file or
// a malformed face is recorded in the trace and skipped. The returned
// Cache may be empty if nothing was found or everything failed to parse.
func Build(ctx context.Context, cfg BuildConfig, logger Logger) (*Cache, *trace.Log, error) {
	if logger == nil {
		logger = discardLogger{}
	}

	dirs := cfg.FontDirs
	if dirs == nil {
		var err error
		dirs, err = fontsource.DefaultFontDirectories()
		if err != nil {
			return nil, nil, err
		}
	}

	enum := fontsource.Enumerator{
		Dirs:               dirs,
		DontFollowSymlinks: cfg.DontFollowSymlinks,
	}
	candidates, err := enum.Enumerate()
	if err != nil {
		return nil, nil, err
	}

	cache := NewCache()
	tr := &trace.Log{Cap: cfg.TraceCap}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	type parseResult struct {
		path    string
		faces   []FontRecord
		ioErr   error
		parsErr []string // messages for faces that failed to parse
	}

	results := make(chan parseResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := os.ReadFile(cand.Path)
			if err != nil {
				results <- parseResult{path: cand.Path, ioErr: err}
				return nil
			}

			n, err := fontfile.Probe(data)
			if err != nil {
				results <- parseResult{path: cand.Path, ioErr: err}
				return nil
			}

			var res parseResult
			res.path = cand.Path
			for i := 0; i < n; i++ {
				pf, err := fontfile.Parse(data, i)
				if err != nil {
					res.parsErr = append(res.parsErr, err.Error())
					continue
				}
				origin := Origin{Kind: FileOrigin, Path: cand.Path, FaceIndex: i}
				res.faces = append(res.faces, newRecord(origin, pf))
			}
			results <- res
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	// Single serializer: Cache.insert is the only write path, invoked from
	// this one goroutine, so no per-record locking is needed during build
	// (spec.md §5 "Concurrent build via message passing").
	for res := range results {
		if res.ioErr != nil {
			logger.Printf("fontcache: skipping %s: %v", res.path, res.ioErr)
			tr.Add(trace.Msg{Level: trace.Warning, Path: res.path, Reason: trace.Success, Actual: res.ioErr.Error()})
			continue
		}
		for _, msg := range res.parsErr {
			logger.Printf("fontcache: skipping a face in %s: %s", res.path, msg)
			tr.Add(trace.Msg{Level: trace.Info, Path: res.path, Reason: trace.Success, Actual: msg})
		}
		for _, fp := range res.faces {
			if cache.insert(fp) {
				tr.Add(trace.Msg{Level: trace.Debug, Path: fp.Origin.Render(), Reason: trace.Success})
			}
		}
	}

	if err := g.Wait(); err != nil {
		return cache, tr, err
	}

	return cache, tr, nil
}

// MemoryFont is a caller-supplied, already in-memory font resource.
type MemoryFont struct {
	Label     string // identifies the resource; rendered as "memory:<label>"
	Bytes     []byte // parsed from a private copy; the cache does not keep the bytes, and the caller retains the original slice
	FaceIndex int    // which face within Bytes to index (0 for single-face containers)
}

// AddMemoryFonts parses and indexes the given in-memory fonts (spec.md
// §4.B). Each font is parsed from a private copy of its bytes; the cache
// keeps the resulting record (metadata, coverage, style) but not the font
// bytes themselves. It takes a brief exclusive
// lock on the cache (spec.md §5) and returns the ids assigned to each
// successfully added font, in the same order as fonts; an entry is the
// zero FontId if that font failed to parse (recorded in the returned
// trace) or was a duplicate of an already-cached (label, faceIndex).
// Successfully added fonts produce no trace entry.
func (c *Cache) AddMemoryFonts(fonts []MemoryFont, logger Logger) ([]FontId, *trace.Log) {
	if logger == nil {
		logger = discardLogger{}
	}
	tr := &trace.Log{}
	ids := make([]FontId, len(fonts))

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, mf := range fonts {
		path := "memory:" + mf.Label
		owned := append([]byte(nil), mf.Bytes...)
		pf, err := fontfile.Parse(owned, mf.FaceIndex)
		if err != nil {
			logger.Printf("fontcache: failed to parse memory font %q: %v", mf.Label, err)
			tr.Add(trace.Msg{Level: trace.Info, Path: path, Reason: trace.Success, Actual: err.Error()})
			continue
		}
		origin := Origin{Kind: MemoryOrigin, Label: mf.Label, FaceIndex: mf.FaceIndex}
		fp := newRecord(origin, pf)
		if c.insert(fp) {
			ids[i] = fp.ID
		}
	}
	return ids, tr
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}
