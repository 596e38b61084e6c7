package watchlist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf", "watchlist.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m, path
}

func TestNewManager_SeedsDefaults(t *testing.T) {
	m, path := newTestManager(t)
	snap := m.Snapshot()
	require.Len(t, snap.Markets, 2)

	tw, ok := snap.Market("tw")
	require.True(t, ok)
	idx, ok := tw.PrimaryIndex()
	require.True(t, ok)
	assert.Equal(t, "^TWII", idx.Symbol)
	assert.NotEmpty(t, tw.Discovery.Universe)

	us, ok := snap.Market("us")
	require.True(t, ok)
	assert.Equal(t, []string{"most_actives", "day_gainers"}, us.Discovery.Screeners)

	loaded, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snap, *loaded)
}

func TestManager_AddRemoveStock(t *testing.T) {
	m, path := newTestManager(t)

	require.NoError(t, m.AddStock("us", "EV", "f"))
	assert.ErrorIs(t, m.AddStock("us", "EV", "F"), ErrDuplicate)
	assert.ErrorIs(t, m.AddStock("us", "Crypto", "COIN"), ErrUnknownSector)
	assert.ErrorIs(t, m.AddStock("jp", "Autos", "7203.T"), ErrUnknownMarket)

	reopened, err := NewManager(path)
	require.NoError(t, err)
	snap := reopened.Snapshot()
	mk, _ := snap.Market("us")
	assert.True(t, mk.Symbols()["F"], "mutation persisted")

	require.NoError(t, reopened.RemoveStock("us", "EV", "F"))
	assert.ErrorIs(t, reopened.RemoveStock("us", "EV", "F"), ErrNotFound)
}

func TestManager_Sectors(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.AddSector("tw", "Memory", []string{"2408.tw", "2344.TW", "2408.TW"}))
	assert.ErrorIs(t, m.AddSector("tw", "Memory", nil), ErrDuplicate)

	snap := m.Snapshot()
	tw, _ := snap.Market("tw")
	last := tw.Sectors[len(tw.Sectors)-1]
	assert.Equal(t, "Memory", last.Name)
	assert.Equal(t, []string{"2408.TW", "2344.TW"}, last.Symbols)

	require.NoError(t, m.RemoveSector("tw", "Memory"))
	assert.ErrorIs(t, m.RemoveSector("tw", "Memory"), ErrUnknownSector)
}

func TestManager_SnapshotIsolated(t *testing.T) {
	m, _ := newTestManager(t)
	snap := m.Snapshot()
	snap.Markets[0].Sectors[0].Symbols[0] = "MUTATED"

	again := m.Snapshot()
	assert.NotEqual(t, "MUTATED", again.Markets[0].Sectors[0].Symbols[0])
}
