package redis

const (
	// KeyPrefixBookmarks is the prefix for per-owner bookmark sets
	KeyPrefixBookmarks = "contesthub:bookmarks:"
	// KeyPrefixCache is the prefix for cache envelopes
	KeyPrefixCache = "contesthub:cache:"
	// KeySnapshotContests holds the last aggregated contest list
	KeySnapshotContests = "contesthub:snapshot:contests"
	// KeySnapshotReport holds the report of the last aggregation
	KeySnapshotReport = "contesthub:snapshot:report"
)

// BookmarksKey returns the Redis key for an owner's bookmark set
func BookmarksKey(owner string) string {
	return KeyPrefixBookmarks + owner
}

// CacheKey returns the Redis key for a cache entry
func CacheKey(key string) string {
	return KeyPrefixCache + key
}
