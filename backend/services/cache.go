package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/katuripu/katuripu/backend/cache"
	"github.com/katuripu/katuripu/backend/utils"
)

// RoadmapCache wraps the cache for rendered roadmaps. Failures are logged
// and otherwise ignored: the database stays the source of truth.
type RoadmapCache struct {
	cache cache.Cache
	ttl   time.Duration
	log   *utils.Logger
}

func NewRoadmapCache(c cache.Cache, ttl time.Duration, log *utils.Logger) *RoadmapCache {
	return &RoadmapCache{cache: c, ttl: ttl, log: log}
}

func (rc *RoadmapCache) get(ctx context.Context, roadmapID uint, lang string, dst interface{}) bool {
	if rc == nil || rc.cache == nil {
		return false
	}
	raw, ok, err := rc.cache.Get(ctx, cache.RoadmapKey(roadmapID, lang))
	if err != nil {
		rc.log.Warn("roadmap cache get failed", "roadmap_id", roadmapID, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		rc.log.Warn("roadmap cache entry corrupt", "roadmap_id", roadmapID, "error", err)
		return false
	}
	return true
}

func (rc *RoadmapCache) set(ctx context.Context, roadmapID uint, lang string, v interface{}) {
	if rc == nil || rc.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rc.cache.Set(ctx, cache.RoadmapKey(roadmapID, lang), raw, rc.ttl); err != nil {
		rc.log.Warn("roadmap cache set failed", "roadmap_id", roadmapID, "error", err)
	}
}

func (rc *RoadmapCache) invalidate(ctx context.Context, roadmapIDs ...uint) {
	if rc == nil || rc.cache == nil {
		return
	}
	for _, id := range roadmapIDs {
		if err := rc.cache.Delete(ctx, cache.RoadmapKeys(id)...); err != nil {
			rc.log.Warn("roadmap cache invalidate failed", "roadmap_id", id, "error", err)
		}
	}
}
