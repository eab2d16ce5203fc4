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

package config

import "time"

const (
	DefaultFuzzyThreshold   = 85
	DefaultDetectionTimeout = 30 * time.Second
	DefaultCacheTTL         = 10 * time.Minute
	DefaultCacheSize        = 32
	DefaultLockWaitTimeout  = 2 * time.Second
	DefaultLockPollInterval = 25 * time.Millisecond
	DefaultMaxGroupSize     = 50
	DefaultMaxHops          = 32
)

// DefaultRelations lists the dependent relations of the case-management registry.
func DefaultRelations() []RelationConfig {
	return []RelationConfig{
		{Name: "dossiers", Table: "dossiers", Columns: []string{"entity_id"}, Kind: "column"},
		{Name: "legal_processes", Table: "legal_processes", Columns: []string{"entity_id", "counterparty_id"}, Kind: "column"},
		{Name: "tasks", Table: "tasks", Columns: []string{"entity_id"}, Kind: "column"},
		{Name: "household_relations", Table: "household_relations", Columns: []string{"entity_id", "related_entity_id"}, Kind: "pair"},
		{Name: "financial_transactions", Table: "financial_transactions", Columns: []string{"entity_id"}, Kind: "column"},
		{Name: "documents", Table: "documents", Columns: []string{"entity_id"}, Kind: "column"},
		{Name: "history", Table: "entity_history", Columns: []string{"entity_id"}, Kind: "column"},
	}
}

// ApplyDefaults fills every unset value with its default.
func (c *Config) ApplyDefaults() {
	if c.Addr.Host == "" {
		c.Addr.Host = "0.0.0.0"
	}
	if c.Addr.Port == 0 {
		c.Addr.Port = 8900
	}
	if c.Log.LogLevel == "" {
		c.Log.LogLevel = "INFO"
	}
	if c.DataSource.Type == "" {
		c.DataSource.Type = "postgres"
	}
	if c.DataSource.SSLMode == "" {
		c.DataSource.SSLMode = "disable"
	}
	if c.Dedup.DefaultThreshold == 0 {
		c.Dedup.DefaultThreshold = DefaultFuzzyThreshold
	}
	if c.Dedup.Blocking == "" {
		c.Dedup.Blocking = "token"
	}
	if c.Dedup.DetectionTimeout == 0 {
		c.Dedup.DetectionTimeout = DefaultDetectionTimeout
	}
	if c.Dedup.CacheTTL == 0 {
		c.Dedup.CacheTTL = DefaultCacheTTL
	}
	if c.Dedup.CacheSize == 0 {
		c.Dedup.CacheSize = DefaultCacheSize
	}
	if c.Dedup.BreakerFailures == 0 {
		c.Dedup.BreakerFailures = 5
	}
	if c.Dedup.BreakerTimeout == 0 {
		c.Dedup.BreakerTimeout = 30 * time.Second
	}
	if c.Merge.LockWaitTimeout == 0 {
		c.Merge.LockWaitTimeout = DefaultLockWaitTimeout
	}
	if c.Merge.LockPollInterval == 0 {
		c.Merge.LockPollInterval = DefaultLockPollInterval
	}
	if c.Merge.MaxGroupSize == 0 {
		c.Merge.MaxGroupSize = DefaultMaxGroupSize
	}
	if c.Resolution.MaxHops == 0 {
		c.Resolution.MaxHops = DefaultMaxHops
	}
	if len(c.Relations) == 0 {
		c.Relations = DefaultRelations()
	}
	for i := range c.Relations {
		if c.Relations[i].Kind == "" {
			c.Relations[i].Kind = "column"
		}
	}
}
