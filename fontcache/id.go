package fontcache

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// FontId is a 128-bit opaque identifier, stable for the lifetime of the
// Cache that minted it. FontIds are not guaranteed stable across cache
// rebuilds (spec.md §4.C); callers must treat them as per-cache tokens.
type FontId struct {
	Hi uint64
	Lo uint64
}

// String renders the canonical hex form used in logs and traces.
func (id FontId) String() string {
	return fmt.Sprintf("%016x%016x", id.Hi, id.Lo)
}

// IsZero reports whether id is the zero value. NewFontID returns the zero
// value only when crypto/rand fails.
func (id FontId) IsZero() bool { return id.Hi == 0 && id.Lo == 0 }

// NewFontID mints a fresh, cryptographically random FontId. Uniqueness
// within a single cache is the only invariant the core requires
// (spec.md §3); a random 128-bit value makes collision negligible without
// needing a shared counter, which would otherwise have to be synchronized
// across the Cache Builder's parallel workers.
func NewFontID() FontId {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; degrade to a zero-entropy id rather than panic, since
		// the core never aborts the process (spec.md §7).
		return FontId{}
	}
	return FontId{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}
