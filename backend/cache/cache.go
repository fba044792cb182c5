// Package cache stores rendered roadmap payloads between requests.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func RoadmapKey(roadmapID uint, lang string) string {
	return fmt.Sprintf("roadmap:%d:%s", roadmapID, lang)
}

// RoadmapKeys lists every language variant of a roadmap entry.
func RoadmapKeys(roadmapID uint) []string {
	return []string{
		RoadmapKey(roadmapID, "ar"),
		RoadmapKey(roadmapID, "fr"),
		RoadmapKey(roadmapID, "en"),
	}
}
