package table_test

import (
	"math"
	"testing"

	"github.com/opsdeck/opsdeck/internal/table"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExactMatchWinsOverFallback(t *testing.T) {
	rec := table.Record{Fields: map[string]any{
		"project_id": "P1",
		"Project Id": "P2",
	}}

	v, ok := table.Resolve(rec, []string{"project_id"})
	require.True(t, ok)
	require.Equal(t, "P1", v)
}

func TestResolve_CandidateOrder(t *testing.T) {
	rec := table.Record{Fields: map[string]any{
		"name":         "fallback",
		"Project Name": "preferred",
	}}

	v, ok := table.Resolve(rec, []string{"Project Name", "project_name", "name"})
	require.True(t, ok)
	require.Equal(t, "preferred", v)
}

func TestResolve_SeparatorInsensitiveFallback(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		query string
	}{
		{"space vs underscore", "Project id", "project_id"},
		{"casing", "PROJECT_ID", "project_id"},
		{"mixed", "Project_Id", "project id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := table.Record{Fields: map[string]any{tc.key: "P1"}}
			v, ok := table.Resolve(rec, []string{tc.query})
			require.True(t, ok)
			require.Equal(t, "P1", v)
		})
	}
}

func TestResolve_FallbackCollisionPicksSmallestKey(t *testing.T) {
	// Both keys normalize to "projectid"; the winner must not depend on
	// map iteration order.
	rec := table.Record{Fields: map[string]any{
		"Project_Id": "underscore",
		"PROJECT ID": "space",
	}}

	for i := 0; i < 50; i++ {
		v, ok := table.Resolve(rec, []string{"project id"})
		require.True(t, ok)
		require.Equal(t, "space", v)
	}
}

func TestResolve_AbsentIsNotAnError(t *testing.T) {
	rec := table.Record{Fields: map[string]any{"status": "Active"}}

	_, ok := table.Resolve(rec, []string{"project_id", "Project id"})
	require.False(t, ok)
	require.Equal(t, "", table.ResolveString(rec, []string{"project_id"}))
}

func TestResolve_NilFieldMap(t *testing.T) {
	_, ok := table.Resolve(table.Record{}, []string{"anything"})
	require.False(t, ok)
}

func TestString_NumericIDsCompareAsStrings(t *testing.T) {
	require.Equal(t, "1001", table.String(float64(1001)))
	require.Equal(t, "10.5", table.String(10.5))
	require.Equal(t, "P1", table.String(" P1 "))
	require.Equal(t, "", table.String(nil))
}

func TestFloat_ParseFailureIsZero(t *testing.T) {
	require.Equal(t, 0.0, table.Float("n/a"))
	require.Equal(t, 0.0, table.Float(nil))
	require.Equal(t, 12.5, table.Float("12.5"))
	require.Equal(t, 40.0, table.Float(float64(40)))
}

func TestFloat_NonFiniteIsZero(t *testing.T) {
	require.Equal(t, 0.0, table.Float("NaN"))
	require.Equal(t, 0.0, table.Float("Inf"))
	require.Equal(t, 0.0, table.Float("+Inf"))
	require.Equal(t, 0.0, table.Float("-inf"))
	require.Equal(t, 0.0, table.Float(math.NaN()))
	require.Equal(t, 0.0, table.Float(math.Inf(1)))
	require.Equal(t, 0.0, table.Float(math.Inf(-1)))
}
