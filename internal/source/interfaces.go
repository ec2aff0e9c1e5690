// Package source provides the table-fetching collaborators feeding the
// hydration engine. Each source yields one entity kind's table of
// loosely-typed records; field names and value types are taken exactly
// as the backing store delivers them.
package source

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/opsdeck/opsdeck/internal/table"
)

// Source fetches one entity kind's raw table.
type Source interface {
	Kind() table.Kind
	Fetch(ctx context.Context) (table.Table, error)
}

// ErrUnavailable indicates the backing store could not be reached or
// read. The refresh orchestrator treats any fetch error as fatal for the
// whole refresh.
var ErrUnavailable = errors.New("source unavailable")

// cellValue normalizes one raw cell into the record value model: string,
// float64, or absent (nil). Bools render to their string form; non-finite
// floats count as absent.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case []byte:
		if len(val) == 0 {
			return nil
		}
		return string(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return nil
	}
}
