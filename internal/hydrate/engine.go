// Package hydrate resolves cross-table identifier references into
// human-readable values. Raw tables reference each other only by opaque
// id strings scattered across differently-named columns; hydration
// annotates each record with a "<field>_resolved" companion holding the
// referenced record's display name, and for a small set of fields
// attaches the referenced record itself.
package hydrate

import (
	"strings"

	"github.com/opsdeck/opsdeck/internal/table"
)

// ResolvedSuffix is appended to a reference field's canonical name to
// form the synthesized display-value field.
const ResolvedSuffix = "_resolved"

// Tables maps each entity kind to its (raw or hydrated) table.
type Tables map[table.Kind]table.Table

// Hydrate returns a copy of tbl with resolved fields added. The input is
// never mutated, ordering is preserved, and a record that resolves
// nothing passes through unchanged apart from its fresh field map.
// Re-hydrating an already hydrated table is a no-op on resolved fields:
// only canonical reference fields are consulted, so no "_resolved"
// companion ever gets a second suffix.
func Hydrate(tbl table.Table, kind table.Kind, all Tables) table.Table {
	schema := table.SchemaFor(kind)
	if len(schema.Refs) == 0 {
		return cloneTable(tbl)
	}

	indexes := make(map[table.Kind]map[string]*table.Record)
	out := make(table.Table, 0, len(tbl))
	for _, rec := range tbl {
		hydrated := rec.Clone()
		for _, ref := range schema.Refs {
			id := table.ResolveString(rec, ref.Candidates)
			if id == "" {
				// Empty or absent means "no reference", not an error.
				continue
			}
			idx := indexes[ref.Target]
			if idx == nil {
				idx = indexTable(all[ref.Target], ref.Target)
				indexes[ref.Target] = idx
			}
			target := idx[id]
			if target == nil {
				// Unresolvable reference: companion stays absent and
				// the presentation layer falls back to the raw id.
				continue
			}
			if name := table.DisplayName(*target, ref.Target); name != "" {
				hydrated.Fields[ref.Field+ResolvedSuffix] = name
			}
			if ref.RelationKey != "" {
				if hydrated.Relations == nil {
					hydrated.Relations = make(map[string]*table.Record)
				}
				hydrated.Relations[ref.RelationKey] = target
			}
		}
		out = append(out, hydrated)
	}
	return out
}

// All hydrates every table in the snapshot against the full raw set.
func All(raw Tables) Tables {
	out := make(Tables, len(raw))
	for kind, tbl := range raw {
		out[kind] = Hydrate(tbl, kind, raw)
	}
	return out
}

// IsResolvedField reports whether a field name is a synthesized
// hydration companion rather than a source column.
func IsResolvedField(name string) bool {
	return strings.HasSuffix(name, ResolvedSuffix)
}

func indexTable(tbl table.Table, kind table.Kind) map[string]*table.Record {
	idx := make(map[string]*table.Record, len(tbl))
	for i := range tbl {
		id := table.PrimaryID(tbl[i], kind)
		if id == "" {
			continue
		}
		// First record wins on duplicate ids; source order is the
		// only deterministic tie-break available.
		if _, seen := idx[id]; !seen {
			idx[id] = &tbl[i]
		}
	}
	return idx
}

func cloneTable(tbl table.Table) table.Table {
	out := make(table.Table, 0, len(tbl))
	for _, rec := range tbl {
		out = append(out, rec.Clone())
	}
	return out
}
