package cache

// ListKey is the cache key of a user's transaction list
func ListKey(uid string) string {
	return "transactions:user:" + uid
}
