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

package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/database/client"
	"github.com/wso2/entity-consolidation-service/internal/system/database/lock"
	"github.com/wso2/entity-consolidation-service/internal/system/database/scripts"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// PostgresStore is the RegistryStore backed by the registry database.
type PostgresStore struct {
	dbClient client.DBClientInterface
	dbType   string
	locker   lock.EntityLock
}

// NewPostgresStore creates a store over an open database client.
func NewPostgresStore(dbClient client.DBClientInterface, dbType string, locker lock.EntityLock) *PostgresStore {
	return &PostgresStore{dbClient: dbClient, dbType: dbType, locker: locker}
}

type mergeOperationRow struct {
	ID               string              `db:"id"`
	SurvivorID       int64               `db:"survivor_id"`
	MemberIDs        pq.Int64Array       `db:"member_ids"`
	RetiredIDs       pq.Int64Array       `db:"retired_ids"`
	FieldResolutions model.IDMap         `db:"field_resolutions"`
	Repointed        model.RelationCount `db:"repointed"`
	Actor            string              `db:"actor"`
	CreatedAt        time.Time           `db:"created_at"`
}

func (r mergeOperationRow) toModel() model.MergeOperation {
	return model.MergeOperation{
		ID:               r.ID,
		SurvivorID:       r.SurvivorID,
		MemberIDs:        []int64(r.MemberIDs),
		RetiredIDs:       []int64(r.RetiredIDs),
		FieldResolutions: r.FieldResolutions,
		Repointed:        r.Repointed,
		Actor:            r.Actor,
		CreatedAt:        r.CreatedAt,
	}
}

func queryError(errorMsg string, err error) error {
	log.GetLogger().Debug(errorMsg, log.Error(err))
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return errors.NewClientError(errors.Describe(errors.CONCURRENT_MERGE,
				fmt.Sprintf("%s: %s", errorMsg, pqErr.Message)), http.StatusConflict)
		}
	}
	return errors.NewServerError(errors.Describe(errors.EXECUTE_QUERY, errorMsg), err)
}

func (s *PostgresStore) GetActiveEntities(ctx context.Context) ([]model.Entity, error) {

	entities := []model.Entity{}
	if err := s.dbClient.DB().SelectContext(ctx, &entities, scripts.GetActiveEntities[s.dbType]); err != nil {
		return nil, queryError("Failed to fetch active entities", err)
	}
	return entities, nil
}

func (s *PostgresStore) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {

	var entity model.Entity
	err := s.dbClient.DB().GetContext(ctx, &entity, scripts.GetEntityByID[s.dbType], id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(fmt.Sprintf("Failed to fetch entity %d", id), err)
	}
	return &entity, nil
}

func (s *PostgresStore) GetRetirement(ctx context.Context, id int64) (*model.RetiredEntity, error) {

	var retired model.RetiredEntity
	err := s.dbClient.DB().GetContext(ctx, &retired, scripts.GetRetiredEntity[s.dbType], id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(fmt.Sprintf("Failed to fetch retirement of entity %d", id), err)
	}
	return &retired, nil
}

func (s *PostgresStore) GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error) {

	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row mergeOperationRow
	err := s.dbClient.DB().GetContext(ctx, &row, scripts.GetMergeOperation[s.dbType], id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(fmt.Sprintf("Failed to fetch merge operation %s", id), err)
	}
	op := row.toModel()
	return &op, nil
}

func (s *PostgresStore) ListMergeOperations(ctx context.Context, entityID int64) ([]model.MergeOperation, error) {

	var rows []mergeOperationRow
	if err := s.dbClient.DB().SelectContext(ctx, &rows, scripts.ListMergeOperationsForEntity[s.dbType],
		entityID); err != nil {
		return nil, queryError(fmt.Sprintf("Failed to list merge operations of entity %d", entityID), err)
	}
	ops := make([]model.MergeOperation, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, row.toModel())
	}
	return ops, nil
}

// Revision combines the entity count with the latest update time.
func (s *PostgresStore) Revision(ctx context.Context) (string, error) {

	results, err := s.dbClient.ExecuteQuery(ctx, scripts.GetRegistryRevision[s.dbType])
	if err != nil {
		return "", queryError("Failed to read registry revision", err)
	}
	if len(results) == 0 {
		return "0-0", nil
	}
	count, _ := results[0]["entity_count"].(int64)
	lastUpdated, _ := results[0]["last_updated"].(time.Time)
	return fmt.Sprintf("%d-%d", count, lastUpdated.UnixNano()), nil
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx RegistryTx) error) error {

	logger := log.GetLogger()
	tx, err := s.dbClient.BeginTx(ctx)
	if err != nil {
		errorMsg := "Failed to begin registry transaction"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.Describe(errors.BEGIN_TRANSACTION, errorMsg), err)
	}

	if err := fn(&postgresTx{tx: tx, dbType: s.dbType, locker: s.locker}); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			logger.Error("Failed to roll back registry transaction", log.Error(rollbackErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		errorMsg := "Failed to commit registry transaction"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.Describe(errors.COMMIT_TRANSACTION, errorMsg), err)
	}
	return nil
}

type postgresTx struct {
	tx     *sqlx.Tx
	dbType string
	locker lock.EntityLock
}

func (t *postgresTx) LockEntities(ctx context.Context, ids []int64, wait time.Duration) error {
	return t.locker.AcquireAll(ctx, t.tx, ids, wait)
}

func (t *postgresTx) GetEntitiesForUpdate(ctx context.Context, ids []int64) (map[int64]*model.Entity, error) {

	var entities []model.Entity
	if err := t.tx.SelectContext(ctx, &entities, scripts.GetEntitiesForUpdate[t.dbType],
		pq.Array(ids)); err != nil {
		return nil, queryError("Failed to load merge group", err)
	}
	found := make(map[int64]*model.Entity, len(entities))
	for i := range entities {
		found[entities[i].ID] = &entities[i]
	}
	return found, nil
}

func (t *postgresTx) UpdateEntity(ctx context.Context, entity *model.Entity) error {

	_, err := t.tx.ExecContext(ctx, scripts.UpdateEntity[t.dbType], entity.ID, entity.Kind, entity.DisplayName,
		entity.TaxID, entity.Fields, time.Now().UTC())
	if err != nil {
		return queryError(fmt.Sprintf("Failed to update entity %d", entity.ID), err)
	}
	return nil
}

func (t *postgresTx) RetireEntity(ctx context.Context, retired model.RetiredEntity) error {

	result, err := t.tx.ExecContext(ctx, scripts.RetireEntity[t.dbType], retired.EntityID, retired.RetiredAt)
	if err != nil {
		return queryError(fmt.Sprintf("Failed to retire entity %d", retired.EntityID), err)
	}
	if affected, _ := result.RowsAffected(); affected != 1 {
		return queryError(fmt.Sprintf("Entity %d is not active", retired.EntityID), sql.ErrNoRows)
	}
	_, err = t.tx.ExecContext(ctx, scripts.InsertRetiredEntity[t.dbType], retired.EntityID, retired.SurvivorID,
		retired.MergeOperationID, retired.RetiredAt)
	if err != nil {
		return queryError(fmt.Sprintf("Failed to record retirement of entity %d", retired.EntityID), err)
	}
	return nil
}

func (t *postgresTx) InsertMergeOperation(ctx context.Context, op *model.MergeOperation) error {

	_, err := t.tx.ExecContext(ctx, scripts.InsertMergeOperation[t.dbType], op.ID, op.SurvivorID,
		pq.Array(op.MemberIDs), pq.Array(op.RetiredIDs), op.FieldResolutions, op.Repointed, op.Actor, op.CreatedAt)
	if err != nil {
		return queryError(fmt.Sprintf("Failed to insert merge operation %s", op.ID), err)
	}
	return nil
}

func (t *postgresTx) RepointReferences(ctx context.Context, table, column string, fromIDs []int64,
	toID int64) (int64, error) {

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(ub.Assign(column, toID))
	ub.Where(ub.In(column, toArgs(fromIDs)...))

	query, args := ub.Build()
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, queryError(fmt.Sprintf("Failed to repoint %s.%s", table, column), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, queryError(fmt.Sprintf("Failed to count repointed rows of %s.%s", table, column), err)
	}
	return affected, nil
}

func (t *postgresTx) DeleteSelfReferences(ctx context.Context, table, columnA, columnB string,
	id int64) (int64, error) {

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal(columnA, id), db.Equal(columnB, id))

	query, args := db.Build()
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, queryError(fmt.Sprintf("Failed to delete self links from %s", table), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, queryError(fmt.Sprintf("Failed to count deleted self links of %s", table), err)
	}
	return affected, nil
}

func (t *postgresTx) CountReferences(ctx context.Context, table string, columns []string,
	ids []int64) (int64, error) {

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	conditions := make([]string, 0, len(columns))
	for _, column := range columns {
		conditions = append(conditions, sb.In(column, toArgs(ids)...))
	}
	sb.Where(sb.Or(conditions...))

	query, args := sb.Build()
	var count int64
	if err := t.tx.GetContext(ctx, &count, query, args...); err != nil {
		return 0, queryError(fmt.Sprintf("Failed to count references in %s (%s)", table,
			strings.Join(columns, ", ")), err)
	}
	return count, nil
}

func toArgs(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
