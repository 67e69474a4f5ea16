// Package cssfont expands CSS generic family names into concrete
// preference lists and resolves a full font-family stack into a
// memoized FontChain (spec.md §4.F, §4.G).
package cssfont

// genericExpansions are the built-in platform-tiered preference lists for
// the five CSS generic families (spec.md §4.F). A concrete family name
// that isn't one of these keys passes through resolveFamily unchanged.
var genericExpansions = map[string][]string{
	"serif":      {"Times New Roman", "Times", "Liberation Serif", "DejaVu Serif", "Noto Serif"},
	"sans-serif": {"Arial", "Helvetica", "Liberation Sans", "DejaVu Sans", "Noto Sans"},
	"monospace":  {"Courier New", "Consolas", "Liberation Mono", "DejaVu Sans Mono", "Menlo"},
	"cursive":    {"Comic Sans MS", "Apple Chancery"},
	"fantasy":    {"Papyrus", "Impact"},
}

// ExpandGeneric expands a single CSS family-stack entry into its ordered
// concrete preferences. A name that isn't a recognized generic is returned
// unchanged as a single-element list.
func ExpandGeneric(name string) []string {
	if prefs, ok := genericExpansions[name]; ok {
		out := make([]string, len(prefs))
		copy(out, prefs)
		return out
	}
	return []string{name}
}

// ExpandStack expands every entry of a CSS font-family stack in place,
// concatenating each entry's expansion in stack order (spec.md §4.F:
// `["Foo", "sans-serif"]` becomes `["Foo", "Arial", "Helvetica", ...]`).
func ExpandStack(stack []string) []string {
	var out []string
	for _, name := range stack {
		out = append(out, ExpandGeneric(name)...)
	}
	return out
}
