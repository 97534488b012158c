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

import "sync"

// inMemoryCache is an unbounded map guarded by a read write lock.
type inMemoryCache[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

// Get implements Cache.
func (m *inMemoryCache[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

// Set implements Cache.
func (m *inMemoryCache[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[K]V)
	}
	m.data[key] = value
}

// Flush implements Cache.
func (m *inMemoryCache[K, V]) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
}

// Len implements Cache.
func (m *inMemoryCache[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// InMemory returns an unbounded cache.
// It suits key spaces that are fixed at compile time, such as Go types.
func InMemory[K comparable, V any]() Cache[K, V] {
	return new(inMemoryCache[K, V])
}
