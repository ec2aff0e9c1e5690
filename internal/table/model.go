package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies an entity table.
type Kind string

const (
	KindProject     Kind = "project"
	KindTask        Kind = "task"
	KindPerson      Kind = "person"
	KindUnit        Kind = "unit"
	KindAccount     Kind = "account"
	KindLead        Kind = "lead"
	KindOpportunity Kind = "opportunity"
	KindHub         Kind = "hub"
)

// Kinds lists every entity kind the engine knows about.
var Kinds = []Kind{
	KindProject, KindTask, KindPerson, KindUnit,
	KindAccount, KindLead, KindOpportunity, KindHub,
}

// Record is one row from a loosely-typed tabular source. Field names are
// stored exactly as the source delivered them; values are strings or
// float64. RowIndex is the origin position and serves as the render
// identity for one refresh, it is not a business key.
type Record struct {
	RowIndex  int                `json:"rowIndex"`
	Fields    map[string]any     `json:"fields"`
	Relations map[string]*Record `json:"relations,omitempty"`
}

// Table is an ordered sequence of records of one entity kind.
type Table []Record

// Get returns the raw value stored under the exact field name.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a copy of the record with its own field map. Relations
// are carried over as-is; they are non-owning back-references.
func (r Record) Clone() Record {
	out := Record{RowIndex: r.RowIndex, Fields: make(map[string]any, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	if len(r.Relations) > 0 {
		out.Relations = make(map[string]*Record, len(r.Relations))
		for k, v := range r.Relations {
			out.Relations[k] = v
		}
	}
	return out
}

// String coerces a raw field value to a string. Numeric ids arrive as
// float64 from JSON and spreadsheet sources; integral values render
// without a decimal point so "1001" and 1001.0 compare equal.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Float coerces a raw field value to a float64. Anything that does not
// parse counts as zero so aggregates never see a NaN.
func Float(v any) float64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		// ParseFloat accepts "NaN" and "Inf" as valid input, so the
		// error check alone is not enough to keep aggregates finite.
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
