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

package client

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// DBClientInterface defines the interface for database operations.
type DBClientInterface interface {
	ExecuteQuery(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	DB() *sqlx.DB
	Ping(ctx context.Context) error
	Close() error
	InitDatabase(ecsHome, file string) error
}

// DBClient is the implementation of DBClientInterface.
type DBClient struct {
	db *sqlx.DB
}

// NewDBClient creates a new instance of DBClient with the provided database connection.
func NewDBClient(db *sqlx.DB) DBClientInterface {

	return &DBClient{
		db: db,
	}
}

// InitDatabase executes the SQL script found at ecsHome/file.
func (client *DBClient) InitDatabase(ecsHome, file string) error {

	sqlBytes, err := os.ReadFile(path.Join(ecsHome, file))
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	_, err = client.db.Exec(string(sqlBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	log.GetLogger().Info("Database schema created successfully", log.String("file", file))
	return nil
}

// ExecuteQuery executes a SELECT query and returns the result as a slice of maps.
func (client *DBClient) ExecuteQuery(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {

	rows, err := client.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := map[string]interface{}{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		result := make(map[string]interface{}, len(row))
		for col, value := range row {
			// Normalize column names to lowercase for consistency.
			result[strings.ToLower(col)] = value
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// BeginTx starts a new database transaction.
func (client *DBClient) BeginTx(ctx context.Context) (*sqlx.Tx, error) {

	return client.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// DB exposes the underlying connection pool.
func (client *DBClient) DB() *sqlx.DB {
	return client.db
}

// Ping verifies the database is reachable.
func (client *DBClient) Ping(ctx context.Context) error {
	return client.db.PingContext(ctx)
}

// Close closes the database connection.
func (client *DBClient) Close() error {
	if os.Getenv("TEST_MODE") == "true" {
		return nil
	}
	return client.db.Close()
}
