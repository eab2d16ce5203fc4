/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// Cache is a bounded cache whose entries expire after a TTL.
type Cache[V any] struct {
	items *expirable.LRU[string, V]
}

// NewCache creates a new cache holding at most size entries for ttl each.
func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		items: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Set adds an item to the cache
func (c *Cache[V]) Set(key string, value V) {

	log.GetLogger().Debug(fmt.Sprint("Setting cache for key: ", key))
	c.items.Add(key, value)
}

// Get retrieves an item from the cache
func (c *Cache[V]) Get(key string) (V, bool) {

	logger := log.GetLogger()
	value, found := c.items.Get(key)
	if !found {
		logger.Debug(fmt.Sprint("Cache not found for key: ", key))
		return value, false
	}
	return value, true
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.items.Remove(key)
}

// Purge removes every item from the cache.
func (c *Cache[V]) Purge() {
	c.items.Purge()
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	return c.items.Len()
}
