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

package setup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

const (
	testDatabase = "registry"
	testUser     = "testuser"
	testPassword = "testpass"
)

// TestDatabase contains the running container and the data source pointing at it.
type TestDatabase struct {
	Container  *postgres.PostgresContainer
	DataSource config.DataSourceConfig
}

// SetupTestDB spins up a Postgres container for the registry.
func SetupTestDB(ctx context.Context) (*TestDatabase, error) {
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	portNumber, err := strconv.Atoi(port.Port())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &TestDatabase{
		Container: container,
		DataSource: config.DataSourceConfig{
			Type:         constants.DataSourcePostgres,
			Hostname:     host,
			Port:         portNumber,
			Name:         testDatabase,
			Username:     testUser,
			Password:     testPassword,
			SSLMode:      "disable",
			MaxOpenConns: 10,
		},
	}, nil
}

// Terminate stops the container.
func (t *TestDatabase) Terminate(ctx context.Context) error {
	return t.Container.Terminate(ctx)
}
