package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CreateSchoolIdempotencyKey returns the cache key reserving a client-supplied
// Idempotency-Key for POST /add-school.
func (r *CacheKeyStruct) CreateSchoolIdempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:add-school:%s", key)
}

var CacheKey = NewCacheKeyStruct()
