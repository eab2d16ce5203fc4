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
	stderrors "errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func seededStore() *MemoryStore {
	s := NewMemoryStore(time.Millisecond)
	s.PutEntity(model.Entity{ID: 1, Kind: constants.KindIndividual, DisplayName: "Ana Souza"})
	s.PutEntity(model.Entity{ID: 2, Kind: constants.KindIndividual, DisplayName: "Ana Sousa"})
	s.PutEntity(model.Entity{ID: 3, Kind: constants.KindOrganization, DisplayName: "Acme Ltd"})
	s.AddRow("dossiers", Row{"entity_id": 1})
	s.AddRow("dossiers", Row{"entity_id": 2})
	s.AddRow("household_relations", Row{"entity_id": 1, "related_entity_id": 2})
	return s
}

func TestMemoryStore_GetActiveEntitiesOrderedByID(t *testing.T) {
	s := seededStore()

	entities, err := s.GetActiveEntities(context.Background())

	require.NoError(t, err)
	require.Len(t, entities, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{entities[0].ID, entities[1].ID, entities[2].ID})
}

func TestMemoryStore_TransactionCommitsBufferedWrites(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	before, _ := s.Revision(ctx)

	err := s.RunInTx(ctx, func(tx RegistryTx) error {
		n, err := tx.RepointReferences(ctx, "dossiers", "entity_id", []int64{2}, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		remaining, err := tx.CountReferences(ctx, "dossiers", []string{"entity_id"}, []int64{2})
		require.NoError(t, err)
		assert.Zero(t, remaining)

		_, err = tx.RepointReferences(ctx, "household_relations", "related_entity_id", []int64{2}, 1)
		require.NoError(t, err)
		deleted, err := tx.DeleteSelfReferences(ctx, "household_relations", "entity_id", "related_entity_id", 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		return tx.RetireEntity(ctx, model.RetiredEntity{EntityID: 2, SurvivorID: 1, MergeOperationID: "op-1"})
	})
	require.NoError(t, err)

	assert.Equal(t, []Row{{"entity_id": 1}, {"entity_id": 1}}, s.Rows("dossiers"))
	assert.Empty(t, s.Rows("household_relations"))
	retired, err := s.GetEntity(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusRetired, retired.Status)
	retirement, err := s.GetRetirement(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), retirement.SurvivorID)
	after, _ := s.Revision(ctx)
	assert.NotEqual(t, before, after)
}

func TestMemoryStore_FailedTransactionLeavesNoTrace(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	boom := stderrors.New("boom")

	err := s.RunInTx(ctx, func(tx RegistryTx) error {
		_, _ = tx.RepointReferences(ctx, "dossiers", "entity_id", []int64{2}, 1)
		_ = tx.RetireEntity(ctx, model.RetiredEntity{EntityID: 2, SurvivorID: 1, MergeOperationID: "op-1"})
		_ = tx.InsertMergeOperation(ctx, &model.MergeOperation{ID: "op-1", SurvivorID: 1})
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Row{{"entity_id": 1}, {"entity_id": 2}}, s.Rows("dossiers"))
	entity, _ := s.GetEntity(ctx, 2)
	assert.True(t, entity.IsActive())
	op, _ := s.GetMergeOperation(ctx, "op-1")
	assert.Nil(t, op)
}

func TestMemoryStore_LockTimesOutWithConcurrencyError(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.RunInTx(ctx, func(tx RegistryTx) error {
			if err := tx.LockEntities(ctx, []int64{1, 2}, time.Second); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := s.RunInTx(ctx, func(tx RegistryTx) error {
		return tx.LockEntities(ctx, []int64{2, 3}, 20*time.Millisecond)
	})
	assert.True(t, errors.HasCode(err, errors.CONCURRENT_MERGE))
	assert.True(t, errors.IsRetryable(err))

	close(release)
	require.NoError(t, <-done)

	err = s.RunInTx(ctx, func(tx RegistryTx) error {
		return tx.LockEntities(ctx, []int64{2, 3}, 20*time.Millisecond)
	})
	assert.NoError(t, err)
}

func TestMemoryStore_ListMergeOperationsNewestFirst(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.RunInTx(ctx, func(tx RegistryTx) error {
		require.NoError(t, tx.InsertMergeOperation(ctx, &model.MergeOperation{ID: "a", SurvivorID: 1,
			RetiredIDs: []int64{2}, CreatedAt: older}))
		return tx.InsertMergeOperation(ctx, &model.MergeOperation{ID: "b", SurvivorID: 3,
			RetiredIDs: []int64{1}, CreatedAt: older.Add(time.Hour)})
	}))

	ops, err := s.ListMergeOperations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "b", ops[0].ID)
	assert.Equal(t, "a", ops[1].ID)

	ops, err = s.ListMergeOperations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	ops, err = s.ListMergeOperations(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
