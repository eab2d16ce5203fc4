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

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigAppliesDefaults(t *testing.T) {
	conf, err := ParseConfig([]byte(`
datasource:
  type: memory
`))
	require.NoError(t, err)

	assert.Equal(t, 8900, conf.Addr.Port)
	assert.Equal(t, "INFO", conf.Log.LogLevel)
	assert.Equal(t, DefaultFuzzyThreshold, conf.Dedup.DefaultThreshold)
	assert.Equal(t, "token", conf.Dedup.Blocking)
	assert.Equal(t, DefaultLockWaitTimeout, conf.Merge.LockWaitTimeout)
	assert.Equal(t, DefaultMaxHops, conf.Resolution.MaxHops)
	assert.Equal(t, DefaultRelations(), conf.Relations)
}

func TestParseConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("ECS_TEST_DB_PASSWORD", "s3cret")

	conf, err := ParseConfig([]byte(`
datasource:
  type: postgres
  password: "${ECS_TEST_DB_PASSWORD}"
  conn_max_lifetime: 30m
dedup:
  default_threshold: 90
  detection_timeout: 10s
relations:
  - name: household
    table: household_relations
    columns: [entity_id, related_entity_id]
    kind: pair
  - name: tasks
    table: tasks
    columns: [entity_id]
`))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", conf.DataSource.Password)
	assert.Equal(t, 30*time.Minute, conf.DataSource.ConnMaxLifetime)
	assert.Equal(t, 90, conf.Dedup.DefaultThreshold)
	assert.Equal(t, 10*time.Second, conf.Dedup.DetectionTimeout)
	require.Len(t, conf.Relations, 2)
	assert.Equal(t, "column", conf.Relations[1].Kind)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"threshold below range": "dedup:\n  default_threshold: 20\n",
		"unknown blocking":      "dedup:\n  blocking: phonetic\n",
		"unknown datasource":    "datasource:\n  type: mongodb\n",
		"relation kind":         "relations:\n  - name: x\n    table: x\n    columns: [a]\n    kind: graph\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "repository", "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "repository", "conf", "deployment.yaml"),
		[]byte("addr:\n  port: 9100\ndatasource:\n  type: memory\n"), 0o600))

	conf, err := LoadConfig(home, "/repository/conf/deployment.yaml")
	require.NoError(t, err)
	assert.Equal(t, 9100, conf.Addr.Port)

	_, err = LoadConfig(home, "/missing.yaml")
	assert.Error(t, err)
}
