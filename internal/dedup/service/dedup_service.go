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
	"time"

	"github.com/sony/gobreaker"
	"github.com/wso2/entity-consolidation-service/internal/dedup/similarity"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/cache"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// DedupServiceInterface defines the duplicate detection operations.
type DedupServiceInterface interface {
	FindExactGroups(ctx context.Context) ([]model.DuplicateGroup, error)
	FindFuzzyGroups(ctx context.Context, threshold int) ([]model.DuplicateGroup, error)
	InvalidateCache()
}

// DedupService detects duplicates over a point in time snapshot of the registry.
type DedupService struct {
	registry store.RegistryStore
	builder  *FuzzyClusterBuilder
	timeout  time.Duration
	groups   *cache.Cache[[]model.DuplicateGroup]
	breaker  *gobreaker.CircuitBreaker
}

// NewDedupService creates a detection service reading from registry.
func NewDedupService(registry store.RegistryStore, scorer similarity.Scorer, conf config.DedupConfig) *DedupService {

	if conf.DetectionTimeout <= 0 {
		conf.DetectionTimeout = config.DefaultDetectionTimeout
	}
	if conf.CacheSize <= 0 {
		conf.CacheSize = config.DefaultCacheSize
	}
	if conf.BreakerFailures == 0 {
		conf.BreakerFailures = 5
	}
	logger := log.GetLogger()
	settings := gobreaker.Settings{
		Name:        "registry-snapshot",
		MaxRequests: 1,
		Timeout:     conf.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= conf.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the registry.
			return err == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Registry circuit breaker changed state", log.String("breaker", name),
				log.String("from", from.String()), log.String("to", to.String()))
		},
	}

	return &DedupService{
		registry: registry,
		builder:  NewFuzzyClusterBuilder(scorer, conf.Blocking),
		timeout:  conf.DetectionTimeout,
		groups:   cache.NewCache[[]model.DuplicateGroup](conf.CacheSize, conf.CacheTTL),
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// FindExactGroups returns groups of active entities sharing a normalized tax identifier.
func (s *DedupService) FindExactGroups(ctx context.Context) ([]model.DuplicateGroup, error) {

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entities, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	groups := FindExactGroups(entities)
	log.GetLogger().Debug("Exact duplicate detection completed", log.Int("entities", len(entities)),
		log.Int("groups", len(groups)))
	return groups, nil
}

// FindFuzzyGroups returns groups of active entities linked by name similarity at threshold.
// Results are cached per registry revision.
func (s *DedupService) FindFuzzyGroups(ctx context.Context, threshold int) ([]model.DuplicateGroup, error) {

	if threshold < constants.MinFuzzyThreshold || threshold > constants.MaxFuzzyThreshold {
		return nil, errors.NewClientError(errors.Describe(errors.VALIDATION,
			fmt.Sprintf("threshold must be between %d and %d, got %d", constants.MinFuzzyThreshold,
				constants.MaxFuzzyThreshold, threshold)), http.StatusBadRequest)
	}

	logger := log.GetLogger()
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	revision, err := s.registry.Revision(ctx)
	if err != nil {
		return nil, s.detectionError(err)
	}
	cacheKey := fmt.Sprintf("fuzzy:%d:%s", threshold, revision)
	if groups, found := s.groups.Get(cacheKey); found {
		logger.Debug("Serving fuzzy groups from cache", log.String("key", cacheKey))
		return cloneGroups(groups), nil
	}

	entities, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.builder.Build(ctx, entities, threshold)
	if err != nil {
		return nil, s.detectionError(err)
	}
	s.groups.Set(cacheKey, groups)
	logger.Elapsed("Fuzzy duplicate detection completed", start, log.Int("threshold", threshold),
		log.Int("entities", len(entities)), log.Int("groups", len(groups)))
	return cloneGroups(groups), nil
}

// cloneGroups copies groups so callers cannot mutate cached results.
func cloneGroups(groups []model.DuplicateGroup) []model.DuplicateGroup {
	if groups == nil {
		return nil
	}
	clones := make([]model.DuplicateGroup, len(groups))
	for i, group := range groups {
		clones[i] = group
		clones[i].Members = append([]int64(nil), group.Members...)
	}
	return clones
}

// InvalidateCache drops every cached detection result.
func (s *DedupService) InvalidateCache() {
	s.groups.Purge()
}

// snapshot reads the active entity set through the circuit breaker.
func (s *DedupService) snapshot(ctx context.Context) ([]model.Entity, error) {

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.registry.GetActiveEntities(ctx)
	})
	if err != nil {
		return nil, s.detectionError(err)
	}
	return result.([]model.Entity), nil
}

func (s *DedupService) detectionError(err error) error {

	logger := log.GetLogger()
	switch {
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		logger.Warn("Duplicate detection was cancelled", log.Error(err))
		return errors.NewServerErrorWithStatus(errors.DETECTION_CANCELLED, err, http.StatusServiceUnavailable)
	case stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests):
		logger.Warn("Registry is unavailable for duplicate detection", log.Error(err))
		return errors.NewServerErrorWithStatus(errors.REGISTRY_UNAVAILABLE, err, http.StatusServiceUnavailable)
	}
	var serverError *errors.ServerError
	if stderrors.As(err, &serverError) {
		return err
	}
	logger.Error("Duplicate detection failed", log.Error(err))
	return errors.NewServerError(errors.DETECTION_FAILED, err)
}
