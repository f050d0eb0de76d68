// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"sync"
)

type permissionCacheKey struct{}

// PermissionCache memoizes role module sets for the lifetime of one request.
// A nil *PermissionCache is valid and caches nothing. The zero value is
// ready to use.
type PermissionCache struct {
	mu      sync.Mutex
	modules map[int64]map[string]struct{}
}

// NewPermissionCache creates an empty cache.
func NewPermissionCache() *PermissionCache {
	return &PermissionCache{modules: make(map[int64]map[string]struct{})}
}

// WithPermissionCache returns a context carrying cache.
func WithPermissionCache(ctx context.Context, cache *PermissionCache) context.Context {
	return context.WithValue(ctx, permissionCacheKey{}, cache)
}

// PermissionCacheFromContext returns the cache carried by ctx, or nil.
func PermissionCacheFromContext(ctx context.Context) *PermissionCache {
	cache, _ := ctx.Value(permissionCacheKey{}).(*PermissionCache)
	return cache
}

// moduleSet returns the module names of roleID, calling load on a miss.
// Failed loads are not cached.
func (c *PermissionCache) moduleSet(ctx context.Context, roleID int64, load func(context.Context, int64) ([]string, error)) (map[string]struct{}, error) {
	if c == nil {
		names, err := load(ctx, roleID)
		if err != nil {
			return nil, err
		}
		return toSet(names), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.modules[roleID]; ok {
		return set, nil
	}
	names, err := load(ctx, roleID)
	if err != nil {
		return nil, err
	}
	set := toSet(names)
	if c.modules == nil {
		c.modules = make(map[int64]map[string]struct{})
	}
	c.modules[roleID] = set
	return set, nil
}

// Invalidate drops the cached set for roleID.
func (c *PermissionCache) Invalidate(roleID int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modules, roleID)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
