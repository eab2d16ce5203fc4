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

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type DataSourceConfig struct {
	Type            string        `yaml:"type" validate:"oneof=postgres memory"`
	Hostname        string        `yaml:"hostname"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"`
}

// DedupConfig configures duplicate detection.
type DedupConfig struct {
	DefaultThreshold int           `yaml:"default_threshold" validate:"gte=50,lte=100"`
	Blocking         string        `yaml:"blocking" validate:"oneof=token none"`
	DetectionTimeout time.Duration `yaml:"detection_timeout" validate:"gt=0"`
	CacheTTL         time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	CacheSize        int           `yaml:"cache_size" validate:"gt=0"`
	RateLimit        float64       `yaml:"rate_limit" validate:"gte=0"`
	RateBurst        int           `yaml:"rate_burst" validate:"gte=0"`
	BreakerFailures  uint32        `yaml:"breaker_failures"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// MergeConfig configures the merge orchestrator.
type MergeConfig struct {
	LockWaitTimeout  time.Duration `yaml:"lock_wait_timeout" validate:"gte=0"`
	LockPollInterval time.Duration `yaml:"lock_poll_interval" validate:"gt=0"`
	MaxGroupSize     int           `yaml:"max_group_size" validate:"gte=2"`
}

// ResolutionConfig configures stale id redirection.
type ResolutionConfig struct {
	MaxHops int `yaml:"max_hops" validate:"gt=0"`
}

// RelationConfig registers a dependent relation backed by a table.
type RelationConfig struct {
	Name    string   `yaml:"name" validate:"required"`
	Table   string   `yaml:"table" validate:"required"`
	Columns []string `yaml:"columns" validate:"required,min=1,dive,required"`
	Kind    string   `yaml:"kind" validate:"omitempty,oneof=column pair"`
}

type Config struct {
	Addr       AddrConfig       `yaml:"addr"`
	Log        LogConfig        `yaml:"log"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Merge      MergeConfig      `yaml:"merge"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Relations  []RelationConfig `yaml:"relations" validate:"dive"`
}
