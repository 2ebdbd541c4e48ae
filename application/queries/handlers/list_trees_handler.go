package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"numtree-backend/application/ports"
	"numtree-backend/application/queries"
)

// ListTreesHandler serves every tree with nested operations
type ListTreesHandler struct {
	treeRepo ports.TreeRepository
	cache    ports.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewListTreesHandler creates a new list trees handler
func NewListTreesHandler(treeRepo ports.TreeRepository, cache ports.Cache, ttl time.Duration, logger *zap.Logger) *ListTreesHandler {
	return &ListTreesHandler{
		treeRepo: treeRepo,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Handle returns all trees oldest first. The result is never nil.
func (h *ListTreesHandler) Handle(ctx context.Context, _ queries.ListTreesQuery) ([]*queries.TreeDetail, error) {
	var cached []*queries.TreeDetail
	entry, hit := readCache(ctx, h.cache, ports.TreeListCacheKey, &cached, h.logger)
	if hit && cached != nil {
		return cached, nil
	}

	stored, err := h.treeRepo.ListWithOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	trees := make([]*queries.TreeDetail, 0, len(stored))
	for _, t := range stored {
		trees = append(trees, queries.NewTreeDetail(t))
	}
	writeCache(ctx, h.cache, entry, trees, h.ttl, h.logger)

	return trees, nil
}
