package index

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/lexcodex/sslsense/analysis"
)

// PayloadCache memoizes formatted hover/completion payloads. Caching is
// sound because Format is deterministic for a given symbol; the cache key
// therefore covers every field that feeds the output.
type PayloadCache struct {
	c *ristretto.Cache[string, string]
}

// NewPayloadCache builds a bounded cache. maxCostBytes limits the total size
// of cached payload text.
func NewPayloadCache(maxCostBytes int64) (*PayloadCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &PayloadCache{c: c}, nil
}

// Payload returns the formatted display string for sym, computing and
// caching it on a miss.
func (p *PayloadCache) Payload(sym analysis.Symbol) string {
	key := payloadKey(sym)
	if cached, ok := p.c.Get(key); ok {
		return cached
	}
	payload := analysis.Format(sym)
	p.c.Set(key, payload, int64(len(payload)))
	return payload
}

// Wait flushes pending cache writes. Only tests need it.
func (p *PayloadCache) Wait() {
	p.c.Wait()
}

// Close releases cache resources.
func (p *PayloadCache) Close() {
	p.c.Close()
}

func payloadKey(sym analysis.Symbol) string {
	key := sym.SourcePath + "\x00" + sym.Name + "\x00" + sym.Kind.String() + "\x00" + sym.Detail
	if sym.Doc != nil {
		key += "\x00" + sym.Doc.Ret + "\x00" + sym.Doc.Description
		for _, param := range sym.Doc.Params {
			key += "\x00" + param.Type + " " + param.Name
		}
	}
	return key
}
