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

package migrations

import (
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationLogger adapts the service logger to migrate.Logger.
type migrationLogger struct {
	logger *log.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l migrationLogger) Verbose() bool {
	return false
}

// Up applies every pending migration for the engine owned tables.
func Up(dataSource config.DataSourceConfig) error {

	logger := log.GetLogger()
	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return errors.Wrap(err, "failed to open embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, DatabaseURL(dataSource))
	if err != nil {
		logger.Error("Failed to create migrate instance", log.Error(err))
		return errors.Wrap(err, "failed to create migrate instance")
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrate instance", log.Any("source_error", sourceErr),
				log.Any("database_error", dbErr))
		}
	}()
	m.Log = migrationLogger{logger: logger}

	start := time.Now()
	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
		return nil
	}
	if err != nil {
		version, dirty, _ := m.Version()
		logger.Error("Failed to apply migrations", log.Error(err), log.Any("version", version),
			log.Any("dirty", dirty))
		return errors.Wrap(err, "failed to apply migrations")
	}
	logger.Elapsed("Successfully applied migrations", start)
	return nil
}

// DatabaseURL builds the connection URL golang-migrate expects for a data source.
func DatabaseURL(dataSource config.DataSourceConfig) string {

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(dataSource.Username, dataSource.Password),
		Host:   fmt.Sprintf("%s:%d", dataSource.Hostname, dataSource.Port),
		Path:   "/" + dataSource.Name,
	}
	if dataSource.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{dataSource.SSLMode}}.Encode()
	}
	return u.String()
}
