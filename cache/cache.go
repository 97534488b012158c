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

// Package cache holds the caches worm keeps compiled statements and row plans in.
package cache

// Cache is a concurrency safe key value store.
type Cache[K comparable, V any] interface {
	// Get returns the value for the key and whether it was present.
	Get(key K) (V, bool)

	// Set sets the value for the key.
	Set(key K, value V)

	// Flush removes every entry.
	Flush()

	// Len returns the number of entries.
	Len() int
}
