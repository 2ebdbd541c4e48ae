package ports

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// TreeListCacheKey holds the serialized list of all trees
const TreeListCacheKey = "trees:all"

// initialGeneration is used until the first write retires a key
const initialGeneration = "0"

// TreeCacheKey returns the key holding a serialized tree detail
func TreeCacheKey(treeID int64) string {
	return "tree:" + strconv.FormatInt(treeID, 10)
}

// GenerationKey holds the generation token that versions key. It is stored
// without expiry.
func GenerationKey(key string) string {
	return key + ":gen"
}

// VersionedKey names the entry of key for one generation
func VersionedKey(key, generation string) string {
	return key + "@" + generation
}

// CurrentCacheKey resolves key to the entry of its live generation. Readers
// must resolve it before loading from storage: an entry filled from a read
// that raced a write lands under a retired generation and is never served.
func CurrentCacheKey(ctx context.Context, cache Cache, key string) (string, error) {
	gen, err := cache.Get(ctx, GenerationKey(key))
	switch {
	case err == nil:
		return VersionedKey(key, string(gen)), nil
	case errors.Is(err, ErrCacheMiss):
		return VersionedKey(key, initialGeneration), nil
	default:
		return "", err
	}
}

// RetireCacheKeys starts a new generation for each key. Entries of earlier
// generations are left to expire.
func RetireCacheKeys(ctx context.Context, cache Cache, keys ...string) error {
	gen := []byte(uuid.NewString())
	var errs []error
	for _, key := range keys {
		if err := cache.Set(ctx, GenerationKey(key), gen, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
