// Package cache provides a generic LRU cache with entry pinning.
//
// The cache backs the per-photo depth-map store: depth maps are expensive
// to acquire, so recently used ones are kept up to a fixed capacity, while
// the map for the photo currently being edited is pinned and never evicted
// regardless of its position in the recency order.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
