package engine

import "regexp"

// templatePattern matches a value that is exactly one {{name}} reference,
// with optional whitespace inside the braces. Strings that merely contain a
// reference, or contain several, are literals.
var templatePattern = regexp.MustCompile(`^\{\{\s*([^{}]+?)\s*\}\}$`)

// Resolve expands raw against the store. A string of the exact form
// "{{name}}" becomes the stored value of name, or nil when absent (absence
// is not an error, it propagates silently). Everything else passes through
// unchanged. Resolution is single-level only: a resolved value that itself
// looks like a template is not expanded again.
func Resolve(store *Store, raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	m := templatePattern.FindStringSubmatch(s)
	if m == nil {
		return raw
	}
	value, _ := store.Get(m[1])
	return value
}

// ResolveData expands every top-level value of a node's data bag.
// Nested maps and slices are passed through as-is.
func ResolveData(store *Store, data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = Resolve(store, v)
	}
	return out
}
