package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	m "onetype.dev/pkg/onetype/internal/model"
)

// DefaultParseCacheSize is the number of parsed units kept by default.
const DefaultParseCacheSize = 1024

// CachingParserAdapter memoizes parse results by path and content hash, so
// files untouched by a fix are not parsed again when the project is reloaded.
type CachingParserAdapter struct {
	ParserAdapter
	cache *lru.Cache[string, m.Unit]
}

// NewCachingParserAdapter wraps inner with an LRU cache holding up to size
// units.
func NewCachingParserAdapter(inner ParserAdapter, size int) (*CachingParserAdapter, error) {
	if size <= 0 {
		size = DefaultParseCacheSize
	}

	cache, err := lru.New[string, m.Unit](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}

	return &CachingParserAdapter{ParserAdapter: inner, cache: cache}, nil
}

// Parse returns the cached unit for identical content at path, parsing it
// otherwise. Failed parses are not cached.
func (c *CachingParserAdapter) Parse(ctx context.Context, path m.Path, content []byte) (m.Unit, error) {
	key := cacheKey(path, content)
	if unit, ok := c.cache.Get(key); ok {
		return unit, nil
	}

	unit, err := c.ParserAdapter.Parse(ctx, path, content)
	if err != nil {
		return m.Unit{}, err
	}

	c.cache.Add(key, unit)

	return unit, nil
}

// Len returns the number of cached units.
func (c *CachingParserAdapter) Len() int {
	return c.cache.Len()
}

func cacheKey(path m.Path, content []byte) string {
	sum := sha256.Sum256(content)
	return string(path) + "\x00" + hex.EncodeToString(sum[:])
}
