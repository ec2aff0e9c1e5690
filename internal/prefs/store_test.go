package prefs_test

import (
	"testing"

	"github.com/opsdeck/opsdeck/internal/cascade"
	"github.com/opsdeck/opsdeck/internal/metrics"
	"github.com/opsdeck/opsdeck/internal/prefs"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *prefs.Store {
	t.Helper()
	store, err := prefs.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_DefaultsWhenEmpty(t *testing.T) {
	store := openStore(t)

	require.Equal(t, cascade.ModeFounder, store.ViewMode())
	require.Equal(t, metrics.DefaultCardOrder, store.CardOrder())
}

func TestStore_RoundTrip(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.SetViewMode(cascade.ModeTeam))
	require.Equal(t, cascade.ModeTeam, store.ViewMode())

	order := []string{metrics.KeyUtilization, metrics.KeyOpenTasks}
	require.NoError(t, store.SetCardOrder(order))
	require.Equal(t, order, store.CardOrder())
}

func TestStore_CorruptValuesDegradeToDefaults(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.SetViewMode(cascade.ViewMode("sideways")))
	require.Equal(t, cascade.ModeFounder, store.ViewMode())

	require.NoError(t, store.SetCardOrder(nil))
	require.Equal(t, metrics.DefaultCardOrder, store.CardOrder())
}
