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

package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// ResolutionServiceInterface defines the stale identifier redirection operations.
type ResolutionServiceInterface interface {
	Resolve(ctx context.Context, id int64) (int64, error)
	GetMergeOperation(ctx context.Context, operationID string) (*model.MergeOperation, error)
	ListMergeOperations(ctx context.Context, entityID int64) ([]model.MergeOperation, error)
}

// ResolutionService follows merge history from a retired id to the entity that absorbed it.
type ResolutionService struct {
	registry store.RegistryStore
	maxHops  int
}

// NewResolutionService creates a resolution service.
func NewResolutionService(registry store.RegistryStore, conf config.ResolutionConfig) *ResolutionService {
	if conf.MaxHops <= 0 {
		conf.MaxHops = config.DefaultMaxHops
	}
	return &ResolutionService{registry: registry, maxHops: conf.MaxHops}
}

// Resolve returns the active entity id currently standing for id. Active ids resolve to
// themselves; retired ids are followed through each merge that absorbed them.
func (s *ResolutionService) Resolve(ctx context.Context, id int64) (int64, error) {

	logger := log.GetLogger()
	visited := map[int64]bool{}
	current := id
	for hops := 0; ; hops++ {
		entity, err := s.registry.GetEntity(ctx, current)
		if err != nil {
			return 0, err
		}
		if entity == nil {
			return 0, notFound(fmt.Sprintf("entity %d does not exist", current))
		}
		if entity.IsActive() {
			if current != id {
				logger.Debug("Redirected stale entity id", log.Int64("requested_id", id),
					log.Int64("resolved_id", current), log.Int("hops", hops))
			}
			return current, nil
		}
		if hops >= s.maxHops {
			return 0, notFound(fmt.Sprintf("entity %d has more than %d merge hops", id, s.maxHops))
		}
		visited[current] = true

		next, err := s.nextHop(ctx, current)
		if err != nil {
			return 0, err
		}
		if visited[next] {
			logger.Warn("Merge history contains a cycle", log.Int64("entity_id", id), log.Int64("at", next))
			return 0, notFound(fmt.Sprintf("the merge history of entity %d is broken", id))
		}
		current = next
	}
}

// nextHop returns the survivor recorded by the merge operation that retired id.
func (s *ResolutionService) nextHop(ctx context.Context, id int64) (int64, error) {

	retirement, err := s.registry.GetRetirement(ctx, id)
	if err != nil {
		return 0, err
	}
	if retirement == nil {
		return 0, notFound(fmt.Sprintf("entity %d is retired but has no retirement record", id))
	}
	op, err := s.registry.GetMergeOperation(ctx, retirement.MergeOperationID)
	if err != nil {
		return 0, err
	}
	if op == nil {
		return 0, notFound(fmt.Sprintf("merge operation %s retiring entity %d is missing",
			retirement.MergeOperationID, id))
	}
	return op.SurvivorID, nil
}

// GetMergeOperation returns one merge audit record.
func (s *ResolutionService) GetMergeOperation(ctx context.Context, operationID string) (*model.MergeOperation, error) {

	op, err := s.registry.GetMergeOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.NewClientError(errors.Describe(errors.MERGE_OPERATION_NOT_FOUND,
			fmt.Sprintf("merge operation %s does not exist", operationID)), http.StatusNotFound)
	}
	return op, nil
}

// ListMergeOperations returns the merges an entity survived or was retired by, newest first.
func (s *ResolutionService) ListMergeOperations(ctx context.Context, entityID int64) ([]model.MergeOperation, error) {

	entity, err := s.registry.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, notFound(fmt.Sprintf("entity %d does not exist", entityID))
	}
	return s.registry.ListMergeOperations(ctx, entityID)
}

func notFound(description string) *errors.ClientError {
	return errors.NewClientError(errors.Describe(errors.NOT_FOUND, description), http.StatusNotFound)
}
