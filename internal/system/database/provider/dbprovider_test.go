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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
)

func TestGetDBConfig_BuildsPostgresDSN(t *testing.T) {
	dbConfig := getDBConfig(config.DataSourceConfig{
		Hostname: "db.internal",
		Port:     5433,
		Username: "ecs",
		Password: "secret",
		Name:     "registry",
		SSLMode:  "disable",
	})

	assert.Equal(t, "postgres", dbConfig.driverName)
	assert.Equal(t, "host=db.internal port=5433 user=ecs password=secret dbname=registry sslmode=disable", dbConfig.dsn)
}
