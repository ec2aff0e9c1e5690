package table

import "strings"

// Resolve locates a semantically-named field on a record. Candidates are
// tried in order with an exact key match first; if none hit, a second
// pass matches case- and separator-insensitively ("Project id" matches
// "project_id"). Absence is a normal outcome: it means the field does
// not exist in this dataset variant.
func Resolve(rec Record, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := rec.Fields[name]; ok {
			return v, true
		}
	}
	for _, name := range candidates {
		want := normalizeFieldName(name)
		// Map iteration order is random, so when two raw keys normalize
		// to the same form the lexicographically smallest one wins.
		best, found := "", false
		for key := range rec.Fields {
			if normalizeFieldName(key) != want {
				continue
			}
			if !found || key < best {
				best, found = key, true
			}
		}
		if found {
			return rec.Fields[best], true
		}
	}
	return nil, false
}

// ResolveString is Resolve with the value coerced to a string.
func ResolveString(rec Record, candidates []string) string {
	v, ok := Resolve(rec, candidates)
	if !ok {
		return ""
	}
	return String(v)
}

// ResolveFloat is Resolve with the value coerced to a float64; a missing
// or unparseable value counts as zero.
func ResolveFloat(rec Record, candidates []string) float64 {
	v, ok := Resolve(rec, candidates)
	if !ok {
		return 0
	}
	return Float(v)
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, " ", "")
	return name
}
