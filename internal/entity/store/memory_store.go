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
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// Row is a dependent record held by the in-memory store; only entity id columns are modelled.
type Row map[string]int64

type rowOp func(rows []Row) ([]Row, int64)

// MemoryStore is an in-process RegistryStore. Transactions buffer their writes and apply them on
// commit, so a failed transaction leaves no trace.
type MemoryStore struct {
	mu         sync.RWMutex
	entities   map[int64]*model.Entity
	retired    map[int64]model.RetiredEntity
	operations map[string]*model.MergeOperation
	tables     map[string][]Row
	revision   uint64

	lockMu       sync.Mutex
	locks        map[int64]*memoryTx
	pollInterval time.Duration
	now          func() time.Time
}

// NewMemoryStore creates an empty store. pollInterval controls how often a blocked lock is retried.
func NewMemoryStore(pollInterval time.Duration) *MemoryStore {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Millisecond
	}
	return &MemoryStore{
		entities:     map[int64]*model.Entity{},
		retired:      map[int64]model.RetiredEntity{},
		operations:   map[string]*model.MergeOperation{},
		tables:       map[string][]Row{},
		locks:        map[int64]*memoryTx{},
		pollInterval: pollInterval,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PutEntity inserts or replaces an entity. Missing status and timestamps are filled in.
func (s *MemoryStore) PutEntity(entity model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := entity.Clone()
	if stored.Status == "" {
		stored.Status = constants.StatusActive
	}
	if stored.Fields == nil {
		stored.Fields = model.Fields{}
	}
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.entities[stored.ID] = stored
	s.revision++
}

// AddRow appends a dependent record to table.
func (s *MemoryStore) AddRow(table string, row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := Row{}
	for k, v := range row {
		copied[k] = v
	}
	s.tables[table] = append(s.tables[table], copied)
}

// Rows returns a copy of the committed rows of table.
func (s *MemoryStore) Rows(table string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRows(s.tables[table])
}

func (s *MemoryStore) GetActiveEntities(ctx context.Context) ([]model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]model.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if entity.IsActive() {
			active = append(active, *entity.Clone())
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (s *MemoryStore) GetEntity(ctx context.Context, id int64) (*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, nil
	}
	return entity.Clone(), nil
}

func (s *MemoryStore) GetRetirement(ctx context.Context, id int64) (*model.RetiredEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	retired, ok := s.retired[id]
	if !ok {
		return nil, nil
	}
	return &retired, nil
}

func (s *MemoryStore) GetMergeOperation(ctx context.Context, id string) (*model.MergeOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.operations[id]
	if !ok {
		return nil, nil
	}
	copied := *op
	return &copied, nil
}

func (s *MemoryStore) ListMergeOperations(ctx context.Context, entityID int64) ([]model.MergeOperation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := []model.MergeOperation{}
	for _, op := range s.operations {
		if op.SurvivorID == entityID || containsID(op.RetiredIDs, entityID) {
			ops = append(ops, *op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if !ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].CreatedAt.After(ops[j].CreatedAt)
		}
		return ops[i].ID < ops[j].ID
	})
	return ops, nil
}

// Revision is a counter bumped on every committed change to the entity set.
func (s *MemoryStore) Revision(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.FormatUint(s.revision, 10), nil
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(tx RegistryTx) error) error {
	tx := &memoryTx{
		store:    s,
		entities: map[int64]*model.Entity{},
		ops:      map[string][]rowOp{},
	}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		log.GetLogger().Debug("Rolling back in-memory transaction", log.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *MemoryStore) commit(tx *memoryTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entity := range tx.entities {
		s.entities[id] = entity
	}
	for _, retired := range tx.retired {
		s.retired[retired.EntityID] = retired
	}
	for _, op := range tx.operations {
		s.operations[op.ID] = op
	}
	for table, ops := range tx.ops {
		rows := s.tables[table]
		for _, op := range ops {
			rows, _ = op(rows)
		}
		s.tables[table] = rows
	}
	if len(tx.entities) > 0 {
		s.revision++
	}
}

func (s *MemoryStore) tryLock(id int64, tx *memoryTx) bool {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	holder, held := s.locks[id]
	if held && holder != tx {
		return false
	}
	s.locks[id] = tx
	return true
}

// memoryTx buffers the writes of one transaction.
type memoryTx struct {
	store      *MemoryStore
	locked     []int64
	entities   map[int64]*model.Entity
	retired    []model.RetiredEntity
	operations []*model.MergeOperation
	ops        map[string][]rowOp
}

func (tx *memoryTx) releaseLocks() {
	tx.store.lockMu.Lock()
	defer tx.store.lockMu.Unlock()
	for _, id := range tx.locked {
		if tx.store.locks[id] == tx {
			delete(tx.store.locks, id)
		}
	}
	tx.locked = nil
}

func (tx *memoryTx) LockEntities(ctx context.Context, ids []int64, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for _, id := range ids {
		for !tx.store.tryLock(id, tx) {
			if !time.Now().Before(deadline) {
				errorMsg := fmt.Sprintf("entity %d is locked by another merge", id)
				return errors.NewClientError(errors.Describe(errors.CONCURRENT_MERGE, errorMsg), http.StatusConflict)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(tx.store.pollInterval):
			}
		}
		tx.locked = append(tx.locked, id)
	}
	return nil
}

func (tx *memoryTx) GetEntitiesForUpdate(ctx context.Context, ids []int64) (map[int64]*model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	found := make(map[int64]*model.Entity, len(ids))
	for _, id := range ids {
		if pending, ok := tx.entities[id]; ok {
			found[id] = pending.Clone()
			continue
		}
		if entity, ok := tx.store.entities[id]; ok {
			found[id] = entity.Clone()
		}
	}
	return found, nil
}

func (tx *memoryTx) current(id int64) (*model.Entity, bool) {
	if pending, ok := tx.entities[id]; ok {
		return pending, true
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	entity, ok := tx.store.entities[id]
	if !ok {
		return nil, false
	}
	return entity.Clone(), true
}

func (tx *memoryTx) UpdateEntity(ctx context.Context, entity *model.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := tx.current(entity.ID); !ok {
		return errors.NewServerError(errors.Describe(errors.EXECUTE_QUERY,
			fmt.Sprintf("entity %d does not exist", entity.ID)), nil)
	}
	updated := entity.Clone()
	updated.UpdatedAt = tx.store.now()
	tx.entities[entity.ID] = updated
	return nil
}

func (tx *memoryTx) RetireEntity(ctx context.Context, retired model.RetiredEntity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entity, ok := tx.current(retired.EntityID)
	if !ok || !entity.IsActive() {
		return errors.NewServerError(errors.Describe(errors.EXECUTE_QUERY,
			fmt.Sprintf("entity %d is not active", retired.EntityID)), nil)
	}
	entity.Status = constants.StatusRetired
	entity.UpdatedAt = tx.store.now()
	tx.entities[entity.ID] = entity
	tx.retired = append(tx.retired, retired)
	return nil
}

func (tx *memoryTx) InsertMergeOperation(ctx context.Context, op *model.MergeOperation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copied := *op
	tx.operations = append(tx.operations, &copied)
	return nil
}

// view returns the rows of table as this transaction sees them.
func (tx *memoryTx) view(table string) []Row {
	tx.store.mu.RLock()
	rows := copyRows(tx.store.tables[table])
	tx.store.mu.RUnlock()

	for _, op := range tx.ops[table] {
		rows, _ = op(rows)
	}
	return rows
}

func (tx *memoryTx) apply(table string, op rowOp) int64 {
	_, affected := op(tx.view(table))
	tx.ops[table] = append(tx.ops[table], op)
	return affected
}

func (tx *memoryTx) RepointReferences(ctx context.Context, table, column string, fromIDs []int64,
	toID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	from := idSet(fromIDs)
	return tx.apply(table, func(rows []Row) ([]Row, int64) {
		var affected int64
		for _, row := range rows {
			if value, ok := row[column]; ok && from[value] {
				row[column] = toID
				affected++
			}
		}
		return rows, affected
	}), nil
}

func (tx *memoryTx) DeleteSelfReferences(ctx context.Context, table, columnA, columnB string,
	id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return tx.apply(table, func(rows []Row) ([]Row, int64) {
		kept := rows[:0]
		var affected int64
		for _, row := range rows {
			a, okA := row[columnA]
			b, okB := row[columnB]
			if okA && okB && a == id && b == id {
				affected++
				continue
			}
			kept = append(kept, row)
		}
		return kept, affected
	}), nil
}

func (tx *memoryTx) CountReferences(ctx context.Context, table string, columns []string,
	ids []int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	wanted := idSet(ids)
	var count int64
	for _, row := range tx.view(table) {
		for _, column := range columns {
			if value, ok := row[column]; ok && wanted[value] {
				count++
				break
			}
		}
	}
	return count, nil
}

func copyRows(rows []Row) []Row {
	copied := make([]Row, 0, len(rows))
	for _, row := range rows {
		r := make(Row, len(row))
		for k, v := range row {
			r[k] = v
		}
		copied = append(copied, r)
	}
	return copied
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
