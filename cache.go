package funcana

import (
	"fmt"
	"strings"
)

// ============================================================
// Derived-Quantity Cache
// ============================================================

// derivedCache memoizes expensive derived quantities for one function
// instance. Ownership is strictly per instance: constructors and the
// With* methods always allocate a fresh cache, so a stale entry can
// never leak across a substitution or a role override. The engine is
// single-threaded, so no locking is done here.
type derivedCache struct {
	entries map[string]interface{}
}

func newDerivedCache() *derivedCache {
	return &derivedCache{entries: map[string]interface{}{}}
}

func (c *derivedCache) lookup(key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *derivedCache) store(key string, v interface{}) {
	c.entries[key] = v
}

// cacheKey builds a stable key from an operation name and its arguments.
func cacheKey(op string, args ...string) string {
	if len(args) == 0 {
		return op + "()"
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(args, ","))
}
