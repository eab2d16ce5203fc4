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
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/entity-consolidation-service/internal/dedup/normalizer"
	"github.com/wso2/entity-consolidation-service/internal/dedup/similarity"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

func taxID(v string) *string {
	return &v
}

func entity(id int64, name string, tax *string) model.Entity {
	return model.Entity{ID: id, Kind: constants.KindIndividual, DisplayName: name, TaxID: tax,
		Status: constants.StatusActive}
}

// pairScorer returns fixed scores for named pairs and 0 otherwise.
type pairScorer map[[2]string]int

func (s pairScorer) Score(a, b string) int {
	if a == b {
		return 100
	}
	if score, ok := s[[2]string{a, b}]; ok {
		return score
	}
	return s[[2]string{b, a}]
}

func dedupConfig() config.DedupConfig {
	return config.DedupConfig{
		DefaultThreshold: 85,
		Blocking:         constants.BlockingToken,
		DetectionTimeout: time.Second,
		CacheTTL:         time.Minute,
		CacheSize:        8,
		BreakerFailures:  2,
		BreakerTimeout:   time.Minute,
	}
}

func TestFindExactGroups_NormalizedTaxIDsMatch(t *testing.T) {
	groups := FindExactGroups([]model.Entity{
		entity(1, "Maria Silva", taxID("123456789")),
		entity(2, "Maria Silva Lda", taxID("123 456 789")),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, constants.GroupKindExact, groups[0].Kind)
	assert.Equal(t, []int64{1, 2}, groups[0].Members)
	assert.Equal(t, 100, groups[0].Score)
	assert.Equal(t, "123456789", groups[0].Key)
}

func TestFindExactGroups_IgnoresBlankAndRetired(t *testing.T) {
	retired := entity(3, "Old Record", taxID("999"))
	retired.Status = constants.StatusRetired

	groups := FindExactGroups([]model.Entity{
		entity(1, "A", nil),
		entity(2, "B", taxID("  ")),
		retired,
		entity(4, "D", taxID("999")),
		entity(5, "E", taxID("--")),
	})

	assert.Empty(t, groups)
	assert.NotNil(t, groups)
}

func TestFindExactGroups_IsAPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []string{"111", "1-1-1", "222", "2.22", "333", "", "  ", "ab-1", "AB1"}
	var entities []model.Entity
	for id := int64(200); id > 0; id-- {
		raw := pool[rng.Intn(len(pool))]
		entities = append(entities, entity(id, fmt.Sprintf("Entity %d", id), taxID(raw)))
	}

	groups := FindExactGroups(entities)

	seen := map[int64]bool{}
	byID := map[int64]*model.Entity{}
	for i := range entities {
		byID[entities[i].ID] = &entities[i]
	}
	for i, group := range groups {
		assert.GreaterOrEqual(t, len(group.Members), 2)
		for j, id := range group.Members {
			assert.False(t, seen[id], "entity %d appears in two groups", id)
			seen[id] = true
			assert.Equal(t, group.Key, normalizer.NormalizeIdentifier(byID[id].TaxIDValue()))
			if j > 0 {
				assert.Less(t, group.Members[j-1], id)
			}
		}
		if i > 0 {
			assert.Less(t, groups[i-1].Members[0], group.Members[0])
		}
	}
}

func TestFuzzyClusterBuilder_DiacriticsIgnored(t *testing.T) {
	builder := NewFuzzyClusterBuilder(similarity.NewTokenScorer(), constants.BlockingToken)

	groups, err := builder.Build(context.Background(), []model.Entity{
		entity(1, "Joao Pereira", nil),
		entity(2, "João Pereira", nil),
	}, 90)

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2}, groups[0].Members)
	assert.Equal(t, 100, groups[0].Score)
	assert.Equal(t, constants.GroupKindFuzzy, groups[0].Kind)
}

func TestFuzzyClusterBuilder_TransitiveChaining(t *testing.T) {
	scorer := pairScorer{
		{"Ana Costa", "Ana Costa Silva"}:   85,
		{"Ana Costa Silva", "Pedro Silva"}: 72,
		{"Ana Costa", "Pedro Silva"}:       30,
	}
	entities := []model.Entity{
		entity(1, "Ana Costa", nil),
		entity(2, "Ana Costa Silva", nil),
		entity(3, "Pedro Silva", nil),
	}

	for _, blocking := range []string{constants.BlockingToken, constants.BlockingNone} {
		t.Run(blocking, func(t *testing.T) {
			groups, err := NewFuzzyClusterBuilder(scorer, blocking).Build(context.Background(), entities, 70)

			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, []int64{1, 2, 3}, groups[0].Members)
			assert.Equal(t, 72, groups[0].Score)
		})
	}
}

func TestFuzzyClusterBuilder_TokenBlockingKeepsMisspelledSingleWords(t *testing.T) {
	entities := []model.Entity{
		entity(1, "Ecotech", nil),
		entity(2, "Ekotech", nil),
	}

	for _, blocking := range []string{constants.BlockingToken, constants.BlockingNone} {
		t.Run(blocking, func(t *testing.T) {
			groups, err := NewFuzzyClusterBuilder(similarity.NewTokenScorer(), blocking).Build(
				context.Background(), entities, 80)

			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, []int64{1, 2}, groups[0].Members)
			assert.Equal(t, 86, groups[0].Score)
		})
	}
}

func TestFuzzyClusterBuilder_TokenBlockingMatchesExhaustive(t *testing.T) {
	words := []string{"ana", "anna", "costa", "kosta", "silva", "silvia", "acme", "akme", "lda", "ltd",
		"ecotech", "ekotech", "joão", "joao", "pereira", "pereyra", "global", "globo", "trading", "trade"}
	rng := rand.New(rand.NewSource(29))

	var entities []model.Entity
	for id := int64(1); id <= 150; id++ {
		parts := make([]string, 1+rng.Intn(3))
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		entities = append(entities, entity(id, strings.Join(parts, " "), nil))
	}
	scorer := similarity.NewTokenScorer()

	for _, threshold := range []int{50, 65, 80, 90, 100} {
		t.Run(fmt.Sprintf("threshold-%d", threshold), func(t *testing.T) {
			blocked, err := NewFuzzyClusterBuilder(scorer, constants.BlockingToken).Build(
				context.Background(), entities, threshold)
			require.NoError(t, err)
			exhaustive, err := NewFuzzyClusterBuilder(scorer, constants.BlockingNone).Build(
				context.Background(), entities, threshold)
			require.NoError(t, err)

			assert.Equal(t, exhaustive, blocked)
		})
	}
}

func TestFuzzyClusterBuilder_ExcludesUnlinkedAndEmptyNames(t *testing.T) {
	scorer := pairScorer{{"Ana Costa", "Ana Costa Silva"}: 85}
	groups, err := NewFuzzyClusterBuilder(scorer, constants.BlockingNone).Build(context.Background(),
		[]model.Entity{
			entity(4, "Ana Costa Silva", nil),
			entity(2, "Ana Costa", nil),
			entity(3, "Pedro Silva", nil),
			entity(5, "", nil),
			entity(6, "  ...  ", nil),
		}, 80)

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{2, 4}, groups[0].Members)
	assert.Equal(t, 85, groups[0].Score)
}

func TestFuzzyClusterBuilder_OrdersGroupsByFirstMember(t *testing.T) {
	builder := NewFuzzyClusterBuilder(similarity.NewTokenScorer(), constants.BlockingToken)

	groups, err := builder.Build(context.Background(), []model.Entity{
		entity(9, "Acme Trading", nil),
		entity(3, "Zeta Holdings", nil),
		entity(1, "ACME Trading", nil),
		entity(7, "Zeta  Holdings.", nil),
	}, 95)

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []int64{1, 9}, groups[0].Members)
	assert.Equal(t, []int64{3, 7}, groups[1].Members)
}

func TestFuzzyClusterBuilder_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFuzzyClusterBuilder(similarity.NewTokenScorer(), constants.BlockingNone).Build(ctx,
		[]model.Entity{entity(1, "Ana", nil), entity(2, "Ana", nil)}, 90)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnionFind_TracksWeakestEdge(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1, 90)
	uf.union(2, 3, 75)
	uf.union(1, 2, 80)
	uf.union(0, 3, 60)

	root := uf.find(0)
	assert.Equal(t, root, uf.find(3))
	assert.Equal(t, 60, uf.minEdge[root])
}

func newMemoryRegistry() *store.MemoryStore {
	s := store.NewMemoryStore(time.Millisecond)
	s.PutEntity(entity(1, "Joao Pereira", taxID("123456789")))
	s.PutEntity(entity(2, "João Pereira", taxID("123 456 789")))
	s.PutEntity(entity(3, "Acme Lda", nil))
	return s
}

func TestDedupService_FindExactGroups(t *testing.T) {
	svc := NewDedupService(newMemoryRegistry(), similarity.NewTokenScorer(), dedupConfig())

	groups, err := svc.FindExactGroups(context.Background())

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2}, groups[0].Members)
}

func TestDedupService_RejectsThresholdOutOfRange(t *testing.T) {
	svc := NewDedupService(newMemoryRegistry(), similarity.NewTokenScorer(), dedupConfig())

	for _, threshold := range []int{49, 101, -1} {
		_, err := svc.FindFuzzyGroups(context.Background(), threshold)
		assert.True(t, errors.HasCode(err, errors.VALIDATION), "threshold %d", threshold)
		assert.False(t, errors.IsRetryable(err))
	}
}

func TestDedupService_CachesUntilRegistryChanges(t *testing.T) {
	registry := newMemoryRegistry()
	svc := NewDedupService(registry, similarity.NewTokenScorer(), dedupConfig())
	ctx := context.Background()

	first, err := svc.FindFuzzyGroups(ctx, 90)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, svc.groups.Len())

	registry.PutEntity(entity(4, "Acme, Lda.", nil))

	second, err := svc.FindFuzzyGroups(ctx, 90)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, []int64{3, 4}, second[1].Members)

	svc.InvalidateCache()
	assert.Equal(t, 0, svc.groups.Len())
}

func TestDedupService_CachedGroupsAreCopied(t *testing.T) {
	svc := NewDedupService(newMemoryRegistry(), similarity.NewTokenScorer(), dedupConfig())
	ctx := context.Background()

	first, err := svc.FindFuzzyGroups(ctx, 90)
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].Members[0] = 99
	first[0].Members = append(first[0].Members, 100)
	first[0].Score = 1

	second, err := svc.FindFuzzyGroups(ctx, 90)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, []int64{1, 2}, second[0].Members)
	assert.Equal(t, 100, second[0].Score)
}

func TestDedupService_CancelledDetectionIsRetryable(t *testing.T) {
	svc := NewDedupService(newMemoryRegistry(), similarity.NewTokenScorer(), dedupConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FindFuzzyGroups(ctx, 90)

	assert.True(t, errors.HasCode(err, errors.DETECTION_CANCELLED))
	assert.True(t, errors.IsRetryable(err))
}

// failingRegistry fails every snapshot read.
type failingRegistry struct {
	store.RegistryStore
	calls int
}

func (f *failingRegistry) GetActiveEntities(ctx context.Context) ([]model.Entity, error) {
	f.calls++
	return nil, stderrors.New("connection refused")
}

func TestDedupService_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	registry := &failingRegistry{}
	svc := NewDedupService(registry, similarity.NewTokenScorer(), dedupConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.FindExactGroups(ctx)
		assert.True(t, errors.HasCode(err, errors.DETECTION_FAILED))
	}

	_, err := svc.FindExactGroups(ctx)
	assert.True(t, errors.HasCode(err, errors.REGISTRY_UNAVAILABLE))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 2, registry.calls)
}
