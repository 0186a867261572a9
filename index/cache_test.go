package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/sslsense/analysis"
)

func TestPayloadCacheReturnsFormatted(t *testing.T) {
	cache, err := NewPayloadCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	sym := analysis.Symbol{Name: "MAX_HP", Kind: analysis.KindConstant, Detail: "100", SourcePath: "test.h"}
	require.Equal(t, analysis.Format(sym), cache.Payload(sym))
}

func TestPayloadCacheHitIsIdentical(t *testing.T) {
	cache, err := NewPayloadCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	sym := analysis.Symbol{
		Name:       "heal",
		Kind:       analysis.KindMacro,
		Detail:     "heal(who)",
		SourcePath: "test.h",
		Doc: &analysis.StructuredDoc{
			Params: []analysis.DocParam{{Name: "who", Type: "ObjectPtr"}},
			Ret:    "int",
		},
	}
	first := cache.Payload(sym)
	cache.Wait()
	require.Equal(t, first, cache.Payload(sym))
}

func TestPayloadCacheDistinguishesSources(t *testing.T) {
	cache, err := NewPayloadCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	a := analysis.Symbol{Name: "FOO", Kind: analysis.KindConstant, Detail: "1", SourcePath: "a.h"}
	b := analysis.Symbol{Name: "FOO", Kind: analysis.KindConstant, Detail: "2", SourcePath: "b.h"}
	require.Equal(t, "1", cache.Payload(a))
	cache.Wait()
	require.Equal(t, "2", cache.Payload(b))
}
