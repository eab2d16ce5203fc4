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
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/merge/relations"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	ecscontext "github.com/wso2/entity-consolidation-service/internal/system/context"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// MergeServiceInterface defines the consolidation operation.
type MergeServiceInterface interface {
	Merge(ctx context.Context, request model.MergeRequest) (*model.MergeResult, error)
}

// CacheInvalidator is notified after every successful merge.
type CacheInvalidator interface {
	InvalidateCache()
}

// MergeService consolidates a duplicate group into its survivor in one transaction.
type MergeService struct {
	registry     store.RegistryStore
	relations    []relations.DependentRelation
	conf         config.MergeConfig
	invalidators []CacheInvalidator
	validate     *validator.Validate
	now          func() time.Time
	newID        func() string
}

// NewMergeService creates a merge service over registry and the given dependent relations.
func NewMergeService(registry store.RegistryStore, dependents []relations.DependentRelation,
	conf config.MergeConfig, invalidators ...CacheInvalidator) *MergeService {

	if conf.MaxGroupSize < 2 {
		conf.MaxGroupSize = config.DefaultMaxGroupSize
	}
	return &MergeService{
		registry:     registry,
		relations:    dependents,
		conf:         conf,
		invalidators: invalidators,
		validate:     validator.New(),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return uuid.New().String() },
	}
}

// Merge retires every member of the group except the survivor. References held by dependent
// relations move to the survivor and the survivor receives the consolidated field set. Either all
// of it happens or nothing does.
func (s *MergeService) Merge(ctx context.Context, request model.MergeRequest) (*model.MergeResult, error) {

	logger := log.GetLogger().With(log.Int64("survivor_id", request.SurvivorID))
	if request.Actor == "" {
		request.Actor = ecscontext.GetActor(ctx)
	}

	members, err := s.validateRequest(request)
	if err != nil {
		s.auditRejected(ctx, request, err)
		return nil, err
	}
	retiredIDs := make([]int64, 0, len(members)-1)
	for _, id := range members {
		if id != request.SurvivorID {
			retiredIDs = append(retiredIDs, id)
		}
	}

	start := time.Now()
	var result *model.MergeResult
	err = s.registry.RunInTx(ctx, func(tx store.RegistryTx) error {
		if err := tx.LockEntities(ctx, members, s.conf.LockWaitTimeout); err != nil {
			return err
		}
		group, err := s.loadGroup(ctx, tx, members)
		if err != nil {
			return err
		}

		survivor, resolutions := ResolveFields(group, request.SurvivorID, request.FieldOverrides)
		if err := tx.UpdateEntity(ctx, survivor); err != nil {
			return err
		}

		repointed, err := s.repointDependents(ctx, tx, retiredIDs, request.SurvivorID)
		if err != nil {
			return err
		}

		now := s.now()
		op := &model.MergeOperation{
			ID:               s.newID(),
			SurvivorID:       request.SurvivorID,
			MemberIDs:        members,
			RetiredIDs:       retiredIDs,
			FieldResolutions: resolutions,
			Repointed:        repointed,
			Actor:            request.Actor,
			CreatedAt:        now,
		}
		for _, id := range retiredIDs {
			if err := tx.RetireEntity(ctx, model.RetiredEntity{
				EntityID:         id,
				SurvivorID:       request.SurvivorID,
				MergeOperationID: op.ID,
				RetiredAt:        now,
			}); err != nil {
				return err
			}
		}
		if err := tx.InsertMergeOperation(ctx, op); err != nil {
			return err
		}

		survivor.UpdatedAt = now
		result = &model.MergeResult{Survivor: survivor, Operation: op}
		return nil
	})
	if err != nil {
		err = s.classify(err)
		logger.Info("Merge rolled back", log.Any("members", members), log.Error(err))
		s.auditRejected(ctx, request, err)
		return nil, err
	}

	for _, invalidator := range s.invalidators {
		invalidator.InvalidateCache()
	}
	logger.Elapsed("Merge committed", start, log.String("operation_id", result.Operation.ID))
	s.auditMerged(ctx, result.Operation)
	return result, nil
}

// validateRequest checks the request shape and returns the distinct member ids in ascending order.
func (s *MergeService) validateRequest(request model.MergeRequest) ([]int64, error) {

	if err := s.validate.Struct(request); err != nil {
		return nil, validationError(describeValidation(err))
	}

	members := dedupeIDs(request.Members)
	if len(members) < 2 {
		return nil, validationError("a merge group needs at least two distinct entities")
	}
	if len(members) > s.conf.MaxGroupSize {
		return nil, validationError(fmt.Sprintf("a merge group may hold at most %d entities, got %d",
			s.conf.MaxGroupSize, len(members)))
	}
	inGroup := make(map[int64]bool, len(members))
	for _, id := range members {
		inGroup[id] = true
	}
	if !inGroup[request.SurvivorID] {
		return nil, validationError(fmt.Sprintf("survivor %d is not a member of the group", request.SurvivorID))
	}
	for field, sourceID := range request.FieldOverrides {
		if strings.TrimSpace(field) == "" {
			return nil, validationError("field overrides must name a field")
		}
		if !inGroup[sourceID] {
			return nil, validationError(fmt.Sprintf("override for %q names entity %d outside the group",
				field, sourceID))
		}
	}
	return members, nil
}

// loadGroup reads the locked members and checks every one of them can still be merged.
func (s *MergeService) loadGroup(ctx context.Context, tx store.RegistryTx, members []int64) ([]*model.Entity, error) {

	loaded, err := tx.GetEntitiesForUpdate(ctx, members)
	if err != nil {
		return nil, err
	}
	group := make([]*model.Entity, 0, len(members))
	for _, id := range members {
		entity, ok := loaded[id]
		if !ok {
			return nil, errors.NewClientError(errors.Describe(errors.NOT_FOUND,
				fmt.Sprintf("entity %d does not exist", id)), http.StatusNotFound)
		}
		if !entity.IsActive() {
			return nil, errors.NewClientError(errors.Describe(errors.STALE_GROUP,
				fmt.Sprintf("entity %d is already %s; recompute the duplicate groups", id, entity.Status)),
				http.StatusConflict)
		}
		group = append(group, entity)
	}
	return group, nil
}

// repointDependents moves references off the retired ids and verifies none are left behind.
func (s *MergeService) repointDependents(ctx context.Context, tx store.RegistryTx, retiredIDs []int64,
	survivorID int64) (model.RelationCount, error) {

	repointed := model.RelationCount{}
	for _, relation := range s.relations {
		affected, err := relation.RepointReferences(ctx, tx, retiredIDs, survivorID)
		if err != nil {
			return nil, dependencyFailure(relation.Name(), err)
		}
		remaining, err := relation.CountReferences(ctx, tx, retiredIDs)
		if err != nil {
			return nil, dependencyFailure(relation.Name(), err)
		}
		if remaining > 0 {
			return nil, dependencyFailure(relation.Name(),
				fmt.Errorf("%d references to retired entities remain", remaining))
		}
		repointed[relation.Name()] = affected
	}
	return repointed, nil
}

// classify maps failures that are not already catalogued onto merge errors.
func (s *MergeService) classify(err error) error {

	var clientError *errors.ClientError
	var serverError *errors.ServerError
	if stderrors.As(err, &clientError) || stderrors.As(err, &serverError) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewServerErrorWithStatus(errors.Describe(errors.MERGE_FAILED,
			"the merge was cancelled before it committed"), err, http.StatusServiceUnavailable)
	}
	return errors.NewServerError(errors.MERGE_FAILED, err)
}

func (s *MergeService) auditMerged(ctx context.Context, op *model.MergeOperation) {

	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   op.Actor,
		InitiatorType: initiatorType(op.Actor),
		TargetID:      strconv.FormatInt(op.SurvivorID, 10),
		TargetType:    log.TargetTypeEntity,
		ActionID:      log.ActionMergeEntities,
		TraceID:       ecscontext.GetTraceID(ctx),
		Data: map[string]interface{}{
			"merge_operation_id": op.ID,
			"retired_ids":        op.RetiredIDs,
			"field_resolutions":  op.FieldResolutions,
			"repointed":          op.Repointed,
		},
	})
}

func (s *MergeService) auditRejected(ctx context.Context, request model.MergeRequest, err error) {

	code := ""
	var clientError *errors.ClientError
	var serverError *errors.ServerError
	if stderrors.As(err, &clientError) {
		code = clientError.Code
	} else if stderrors.As(err, &serverError) {
		code = serverError.Code
	}
	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   request.Actor,
		InitiatorType: initiatorType(request.Actor),
		TargetID:      strconv.FormatInt(request.SurvivorID, 10),
		TargetType:    log.TargetTypeEntity,
		ActionID:      log.ActionMergeRejected,
		TraceID:       ecscontext.GetTraceID(ctx),
		Data: map[string]interface{}{
			"members":    request.Members,
			"error_code": code,
		},
	})
}

func initiatorType(actor string) string {
	if actor == "" || actor == constants.SystemActor {
		return log.InitiatorTypeSystem
	}
	return log.InitiatorTypeUser
}

func validationError(description string) *errors.ClientError {
	return errors.NewClientError(errors.Describe(errors.VALIDATION, description), http.StatusBadRequest)
}

func dependencyFailure(relation string, cause error) *errors.ServerError {
	log.GetLogger().Warn("Dependent relation failed during merge", log.String("relation", relation),
		log.Error(cause))
	return errors.NewServerErrorWithStatus(errors.Describe(errors.PARTIAL_DEPENDENCY_FAILURE,
		fmt.Sprintf("repointing %s failed; the merge was rolled back", relation)), cause, http.StatusBadGateway)
}

// describeValidation turns validator failures into a single readable sentence.
func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed the %q rule", fieldError.Namespace(), fieldError.Tag()))
	}
	return strings.Join(messages, "; ")
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
