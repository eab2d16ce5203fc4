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
	"time"

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
)

// RegistryStore is the narrow view of the customer registry the engine works against.
type RegistryStore interface {
	// GetActiveEntities returns every active entity ordered by id.
	GetActiveEntities(ctx context.Context) ([]model.Entity, error)
	// GetEntity returns nil when the id was never issued.
	GetEntity(ctx context.Context, id int64) (*model.Entity, error)
	// GetRetirement returns nil when the entity was never retired.
	GetRetirement(ctx context.Context, id int64) (*model.RetiredEntity, error)
	// GetMergeOperation returns nil when no operation has the id.
	GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error)
	// ListMergeOperations returns the operations an entity took part in, newest first.
	ListMergeOperations(ctx context.Context, entityID int64) ([]model.MergeOperation, error)
	// Revision changes whenever an entity is created, updated or retired.
	Revision(ctx context.Context) (string, error)
	// RunInTx runs fn in a transaction that commits only when fn returns nil.
	RunInTx(ctx context.Context, fn func(tx RegistryTx) error) error
}

// RegistryTx is the set of writes a merge performs inside one transaction.
type RegistryTx interface {
	// LockEntities locks ids in the given order, failing with a concurrency error once wait elapses.
	LockEntities(ctx context.Context, ids []int64, wait time.Duration) error
	// GetEntitiesForUpdate returns the entities that exist among ids, keyed by id.
	GetEntitiesForUpdate(ctx context.Context, ids []int64) (map[int64]*model.Entity, error)
	UpdateEntity(ctx context.Context, entity *model.Entity) error
	RetireEntity(ctx context.Context, retired model.RetiredEntity) error
	InsertMergeOperation(ctx context.Context, op *model.MergeOperation) error
	// RepointReferences rewrites column values in fromIDs to toID and returns the rows changed.
	RepointReferences(ctx context.Context, table, column string, fromIDs []int64, toID int64) (int64, error)
	// DeleteSelfReferences removes rows of a link table whose two columns both hold id.
	DeleteSelfReferences(ctx context.Context, table, columnA, columnB string, id int64) (int64, error)
	// CountReferences counts rows where any of columns holds one of ids.
	CountReferences(ctx context.Context, table string, columns []string, ids []int64) (int64, error)
}
