// Package symbols wraps an optional document symbol provider with a
// version-keyed cache and tree lookups. The provider is best-effort: it may
// be missing, throw, or return an empty tree, and every consumer has a text
// scanning fallback with the same output shape. Consumers must use one path
// or the other for a given extraction, never a mix of both.
package symbols

import (
	"context"
	"sync"

	"github.com/classkit/classkit/internal/debug"
	"github.com/classkit/classkit/internal/types"
)

// Provider produces a document symbol tree, typically backed by a language
// service. Returning an empty slice or an error are both treated as "no
// tree" by the cache.
type Provider interface {
	DocumentSymbols(ctx context.Context, doc *types.Document) ([]*types.Symbol, error)
}

type cacheEntry struct {
	version int
	symbols []*types.Symbol
}

// Cache memoizes provider results per document URI, invalidated whenever the
// document version changes. It is an injectable value, not a singleton, so
// tests construct isolated instances.
type Cache struct {
	mu       sync.Mutex
	provider Provider
	entries  map[string]cacheEntry
}

// NewCache wraps the given provider. A nil provider is valid and yields an
// empty tree for every document, forcing the text fallback path everywhere.
func NewCache(provider Provider) *Cache {
	return &Cache{
		provider: provider,
		entries:  make(map[string]cacheEntry),
	}
}

// DocumentSymbols returns the symbol tree for doc, consulting the cache
// first. Provider failures and empty results evict the cache entry and
// return nil so dependent extractions take their textual fallback.
func (c *Cache) DocumentSymbols(ctx context.Context, doc *types.Document) []*types.Symbol {
	c.mu.Lock()
	entry, ok := c.entries[doc.URI]
	c.mu.Unlock()
	if ok && entry.version == doc.Version {
		return entry.symbols
	}

	if c.provider == nil {
		c.Invalidate(doc.URI)
		return nil
	}
	syms, err := c.provider.DocumentSymbols(ctx, doc)
	if err != nil || len(syms) == 0 {
		if err != nil {
			debug.Printf("symbol provider failed for %s: %v\n", doc.URI, err)
		}
		c.Invalidate(doc.URI)
		return nil
	}

	c.mu.Lock()
	c.entries[doc.URI] = cacheEntry{version: doc.Version, symbols: syms}
	c.mu.Unlock()
	return syms
}

// Invalidate drops the cache entry for the given URI.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	delete(c.entries, uri)
	c.mu.Unlock()
}

// EnclosingSymbol returns the deepest symbol whose range contains pos and
// whose kind is in kinds. A parent is returned only when no matching
// descendant covers the position.
func EnclosingSymbol(syms []*types.Symbol, pos types.Position, kinds ...types.SymbolKind) *types.Symbol {
	for _, s := range syms {
		if !s.Range.Contains(pos) {
			continue
		}
		if deeper := EnclosingSymbol(s.Children, pos, kinds...); deeper != nil {
			return deeper
		}
		if kindIn(s.Kind, kinds) {
			return s
		}
	}
	return nil
}

// CollectByKind walks the tree in pre-order and returns every symbol of the
// given kind at any nesting depth.
func CollectByKind(syms []*types.Symbol, kind types.SymbolKind) []*types.Symbol {
	var out []*types.Symbol
	var walk func([]*types.Symbol)
	walk = func(level []*types.Symbol) {
		for _, s := range level {
			if s.Kind == kind {
				out = append(out, s)
			}
			walk(s.Children)
		}
	}
	walk(syms)
	return out
}

// FindByKindAndName returns the first symbol of the given kind with the
// given name, in pre-order.
func FindByKindAndName(syms []*types.Symbol, kind types.SymbolKind, name string) *types.Symbol {
	for _, s := range CollectByKind(syms, kind) {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func kindIn(k types.SymbolKind, kinds []types.SymbolKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
