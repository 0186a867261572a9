package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/sslsense/analysis"
)

func openTestStore(t *testing.T) *SymbolStore {
	t.Helper()
	store, err := OpenSymbolStore(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSymbolStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	symbols := []analysis.Symbol{
		{Name: "MAX_HP", Kind: analysis.KindConstant, Detail: "100", SourcePath: "define.h"},
		{
			Name:       "heal",
			Kind:       analysis.KindMacro,
			Detail:     "heal(who)",
			SourcePath: "define.h",
			Doc: &analysis.StructuredDoc{
				Description: "Heals the target.",
				Params:      []analysis.DocParam{{Name: "who", Type: "ObjectPtr"}},
				Ret:         "int",
			},
		},
	}
	require.NoError(t, store.Save("/work/define.h", 42, symbols))

	got, ok := store.Load("/work/define.h", 42)
	require.True(t, ok)
	require.Equal(t, symbols, got)
}

func TestSymbolStoreMtimeMismatch(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Save("/work/define.h", 42, nil))

	_, ok := store.Load("/work/define.h", 43)
	require.False(t, ok, "changed mtime invalidates the row")
}

func TestSymbolStoreMissingPath(t *testing.T) {
	store := openTestStore(t)
	_, ok := store.Load("/never/saved.h", 1)
	require.False(t, ok)
}

func TestSymbolStoreUpsert(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Save("/work/define.h", 1, []analysis.Symbol{{Name: "OLD"}}))
	require.NoError(t, store.Save("/work/define.h", 2, []analysis.Symbol{{Name: "NEW"}}))

	got, ok := store.Load("/work/define.h", 2)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, "NEW", got[0].Name)
}
