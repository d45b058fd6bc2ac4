package domain

import "errors"

// ErrCacheMiss indicates no cached entry was found. Expired entries and an
// unreachable store surface identically.
var ErrCacheMiss = errors.New("cache miss")
