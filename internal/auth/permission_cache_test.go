// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package auth

import (
	"context"
	"errors"
	"testing"
)

func TestPermissionCache_Variants(t *testing.T) {
	tests := []struct {
		name      string
		cache     *PermissionCache
		wantLoads int
	}{
		{"nil cache loads every time", nil, 2},
		{"zero value caches", &PermissionCache{}, 1},
		{"constructed cache", NewPermissionCache(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loads := 0
			load := func(context.Context, int64) ([]string, error) {
				loads++
				return []string{"report_view"}, nil
			}
			for i := 0; i < 2; i++ {
				set, err := tt.cache.moduleSet(context.Background(), 7, load)
				if err != nil {
					t.Fatalf("moduleSet() error = %v", err)
				}
				if _, ok := set["report_view"]; !ok {
					t.Errorf("moduleSet() = %v, want report_view", set)
				}
			}
			if loads != tt.wantLoads {
				t.Errorf("loads = %d, want %d", loads, tt.wantLoads)
			}
		})
	}
}

func TestPermissionCache_FailedLoadNotCached(t *testing.T) {
	var cache PermissionCache
	boom := errors.New("db down")
	if _, err := cache.moduleSet(context.Background(), 1, func(context.Context, int64) ([]string, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("moduleSet() error = %v, want %v", err, boom)
	}

	loaded := false
	if _, err := cache.moduleSet(context.Background(), 1, func(context.Context, int64) ([]string, error) {
		loaded = true
		return nil, nil
	}); err != nil {
		t.Fatalf("moduleSet() error = %v", err)
	}
	if !loaded {
		t.Error("a failed load should not be cached")
	}

	cache.Invalidate(1)
	(&PermissionCache{}).Invalidate(2)
}
