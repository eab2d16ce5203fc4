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

package lock

import (
	"context"
	"fmt"
	"hash/fnv" // For hashing string keys to integers
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wso2/entity-consolidation-service/internal/system/database/scripts"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// EntityLock serializes merges touching the same entity ids for the lifetime of a transaction.
type EntityLock interface {
	AcquireAll(ctx context.Context, tx *sqlx.Tx, ids []int64, wait time.Duration) error
}

// PostgresLock implements EntityLock using transaction scoped PostgreSQL advisory locks.
type PostgresLock struct {
	dbType       string
	pollInterval time.Duration
}

func NewPostgresLock(dbType string, pollInterval time.Duration) *PostgresLock {
	return &PostgresLock{dbType: dbType, pollInterval: pollInterval}
}

// EntityLockKey returns the name an entity id is locked under.
func EntityLockKey(id int64) string {
	return fmt.Sprintf("ecs-entity-%d", id)
}

// PostgreSQL advisory locks use bigint or two integers. We'll use a single bigint.
func (l *PostgresLock) generateLockKey(key string) (int64, error) {

	h := fnv.New64a() // FNV-1a is a good general-purpose non-cryptographic hash
	_, err := h.Write([]byte(key))
	if err != nil {
		errorMsg := fmt.Sprintf("failed to hash lock key '%s'", key)
		log.GetLogger().Debug(errorMsg, log.Error(err))
		return 0, errors.NewServerError(errors.Describe(errors.LOCK_KEY_GEN, errorMsg), err)
	}
	return int64(h.Sum64()), nil
}

// AcquireAll locks ids in the given order, polling each one until wait has elapsed since the first
// attempt. Locks are released when tx commits or rolls back.
func (l *PostgresLock) AcquireAll(ctx context.Context, tx *sqlx.Tx, ids []int64, wait time.Duration) error {

	logger := log.GetLogger()
	deadline := time.Now().Add(wait)
	for _, id := range ids {
		lockID, err := l.generateLockKey(EntityLockKey(id))
		if err != nil {
			return err
		}
		for {
			acquired, err := l.tryAcquire(ctx, tx, lockID)
			if err != nil {
				return err
			}
			if acquired {
				logger.Debug("Entity lock acquired", log.Int64("entity_id", id))
				break
			}
			if !time.Now().Before(deadline) {
				errorMsg := fmt.Sprintf("entity %d is locked by another merge", id)
				logger.Info(errorMsg)
				return errors.NewClientError(errors.Describe(errors.CONCURRENT_MERGE, errorMsg), http.StatusConflict)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.pollInterval):
			}
		}
	}
	return nil
}

func (l *PostgresLock) tryAcquire(ctx context.Context, tx *sqlx.Tx, lockID int64) (bool, error) {

	var acquired bool
	if err := tx.GetContext(ctx, &acquired, scripts.TryEntityLock[l.dbType], lockID); err != nil {
		errorMsg := "Failed to execute pg_try_advisory_xact_lock"
		log.GetLogger().Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.Describe(errors.LOCK_ACQUIRE, errorMsg), err)
	}
	return acquired, nil
}
