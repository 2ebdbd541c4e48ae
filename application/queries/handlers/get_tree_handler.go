package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"numtree-backend/application/ports"
	"numtree-backend/application/queries"
)

// GetTreeHandler serves tree details, read through the cache
type GetTreeHandler struct {
	treeRepo ports.TreeRepository
	cache    ports.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewGetTreeHandler creates a new get tree handler
func NewGetTreeHandler(treeRepo ports.TreeRepository, cache ports.Cache, ttl time.Duration, logger *zap.Logger) *GetTreeHandler {
	return &GetTreeHandler{
		treeRepo: treeRepo,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Handle returns the tree with its operations nested. Returns TreeNotFound
// when absent.
func (h *GetTreeHandler) Handle(ctx context.Context, query queries.GetTreeQuery) (*queries.TreeDetail, error) {
	var cached queries.TreeDetail
	entry, hit := readCache(ctx, h.cache, ports.TreeCacheKey(query.TreeID), &cached, h.logger)
	if hit {
		return &cached, nil
	}

	stored, err := h.treeRepo.GetWithOperations(ctx, query.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	detail := queries.NewTreeDetail(*stored)
	writeCache(ctx, h.cache, entry, detail, h.ttl, h.logger)

	h.logger.Debug("Tree retrieved",
		zap.Int64("treeID", query.TreeID),
		zap.Int("operations", len(stored.Operations)),
	)

	return detail, nil
}

// readCache looks key up in its live generation and returns the entry name to
// fill on a miss. The entry is empty when the cache is unreachable.
func readCache(ctx context.Context, cache ports.Cache, key string, dst interface{}, logger *zap.Logger) (string, bool) {
	entry, err := ports.CurrentCacheKey(ctx, cache, key)
	if err != nil {
		logger.Warn("Cache generation lookup failed", zap.String("key", key), zap.Error(err))
		return "", false
	}

	data, err := cache.Get(ctx, entry)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			logger.Warn("Cache read failed", zap.String("key", entry), zap.Error(err))
		}
		return entry, false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("Discarding corrupt cache entry", zap.String("key", entry), zap.Error(err))
		return entry, false
	}
	return entry, true
}

func writeCache(ctx context.Context, cache ports.Cache, key string, value interface{}, ttl time.Duration, logger *zap.Logger) {
	if key == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
