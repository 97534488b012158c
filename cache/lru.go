/*
Copyright 2024 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// lruCache evicts the least recently used entries once it holds size of them.
type lruCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// Get implements Cache.
func (l *lruCache[K, V]) Get(key K) (V, bool) { return l.lru.Get(key) }

// Set implements Cache.
func (l *lruCache[K, V]) Set(key K, value V) { l.lru.Add(key, value) }

// Flush implements Cache.
func (l *lruCache[K, V]) Flush() { l.lru.Purge() }

// Len implements Cache.
func (l *lruCache[K, V]) Len() int { return l.lru.Len() }

// LRU returns a cache bounded to size entries.
// Entries older than ttl are dropped; a ttl of zero keeps them until evicted.
// A size of zero means no bound.
func LRU[K comparable, V any](size int, ttl time.Duration) Cache[K, V] {
	return &lruCache[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}
