package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opsdeck/opsdeck/internal/table"
)

// HTTPJSONSource fetches a table from an endpoint returning a JSON array
// of objects. Keys become raw field names; string and numeric values are
// kept, nulls are absent.
type HTTPJSONSource struct {
	kind   table.Kind
	url    string
	client *http.Client
}

// NewHTTPJSONSource creates a source for one endpoint. A nil client gets
// a default with a 15s timeout.
func NewHTTPJSONSource(kind table.Kind, url string, client *http.Client) *HTTPJSONSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPJSONSource{kind: kind, url: url, client: client}
}

func (s *HTTPJSONSource) Kind() table.Kind { return s.kind }

func (s *HTTPJSONSource) Fetch(ctx context.Context) (table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", ErrUnavailable, s.url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrUnavailable, s.url, resp.StatusCode)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, s.url, err)
	}

	out := make(table.Table, 0, len(raw))
	for i, obj := range raw {
		fields := make(map[string]any, len(obj))
		for k, v := range obj {
			if cv := cellValue(v); cv != nil {
				fields[k] = cv
			}
		}
		out = append(out, table.Record{RowIndex: i, Fields: fields})
	}
	return out, nil
}
