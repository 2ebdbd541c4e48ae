package ports

import "errors"

// ErrCacheMiss is returned by Cache.Get for absent keys
var ErrCacheMiss = errors.New("cache miss")
