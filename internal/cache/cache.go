// Package cache emits invalidation for article listing namespaces so other
// views refresh after a successful publish or draft-save.
package cache

import "context"

// Cache key namespaces for article listings
const (
	ArticleListKey       = "articles:list"
	ArticlePagePrefix    = "articles:page:"
	articlePageMatchGlob = ArticlePagePrefix + "*"
)

// Invalidator signals that cached article listings are stale
type Invalidator interface {
	InvalidateArticleLists(ctx context.Context) error
}

// Noop is used when no cache backend is configured and in tests
type Noop struct{}

func (Noop) InvalidateArticleLists(ctx context.Context) error { return nil }
