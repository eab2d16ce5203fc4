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
	"sort"

	"github.com/wso2/entity-consolidation-service/internal/dedup/normalizer"
	"github.com/wso2/entity-consolidation-service/internal/dedup/similarity"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

const cancellationCheck = 1024

// normalizedScorer is implemented by scorers that can skip normalization of their inputs.
type normalizedScorer interface {
	ScoreNormalized(a, b string) int
}

// boundedScorer is implemented by scorers that can cheaply bound the score of two normalized names
// from above.
type boundedScorer interface {
	ScoreBound(a, b string) int
}

// FuzzyClusterBuilder links entities whose names score at or above a threshold and reports the
// connected components. Components may chain names that are not directly similar.
type FuzzyClusterBuilder struct {
	scorer   similarity.Scorer
	blocking string
}

// NewFuzzyClusterBuilder creates a builder. blocking selects how pairs are compared: "none" scores
// every pair, "token" scores pairs sharing a word and skips the rest only when the scorer's bound
// shows they cannot reach the threshold. Both produce the same groups.
func NewFuzzyClusterBuilder(scorer similarity.Scorer, blocking string) *FuzzyClusterBuilder {
	if blocking == "" {
		blocking = constants.BlockingToken
	}
	return &FuzzyClusterBuilder{scorer: scorer, blocking: blocking}
}

type candidate struct {
	id         int64
	name       string
	normalized string
}

// Build returns the fuzzy duplicate groups among entities at threshold. It stops with the context
// error when ctx is done.
func (b *FuzzyClusterBuilder) Build(ctx context.Context, entities []model.Entity,
	threshold int) ([]model.DuplicateGroup, error) {

	candidates := make([]candidate, 0, len(entities))
	for _, entity := range entities {
		if !entity.IsActive() {
			continue
		}
		normalized := normalizer.NormalizeName(entity.DisplayName)
		if normalized == "" {
			continue
		}
		candidates = append(candidates, candidate{id: entity.ID, name: entity.DisplayName, normalized: normalized})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].id < candidates[j].id })

	uf := newUnionFind(len(candidates))
	linked := make([]bool, len(candidates))
	compared := 0
	var scoreErr error
	b.forEachPair(candidates, threshold, func(i, j int) bool {
		compared++
		if compared%cancellationCheck == 0 {
			if err := ctx.Err(); err != nil {
				scoreErr = err
				return false
			}
		}
		if score := b.score(candidates[i], candidates[j]); score >= threshold {
			uf.union(i, j, score)
			linked[i] = true
			linked[j] = true
		}
		return true
	})
	if scoreErr != nil {
		return nil, scoreErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	components := make(map[int][]int64)
	for i, c := range candidates {
		if linked[i] {
			root := uf.find(i)
			components[root] = append(components[root], c.id)
		}
	}

	groups := make([]model.DuplicateGroup, 0, len(components))
	for root, members := range components {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, model.DuplicateGroup{
			Kind:    constants.GroupKindFuzzy,
			Members: members,
			Score:   uf.minEdge[root],
		})
	}
	sortGroups(groups)
	return groups, nil
}

func (b *FuzzyClusterBuilder) score(x, y candidate) int {
	if scorer, ok := b.scorer.(normalizedScorer); ok {
		return scorer.ScoreNormalized(x.normalized, y.normalized)
	}
	return b.scorer.Score(x.name, y.name)
}

// forEachPair calls visit once for every pair i < j that may reach threshold, until visit returns
// false.
func (b *FuzzyClusterBuilder) forEachPair(candidates []candidate, threshold int, visit func(i, j int) bool) {

	bounder, bounded := b.scorer.(boundedScorer)
	if b.blocking == constants.BlockingNone || !bounded {
		for i := range candidates {
			for j := i + 1; j < len(candidates); j++ {
				if !visit(i, j) {
					return
				}
			}
		}
		return
	}

	buckets := make(map[string][]int)
	tokensOf := make([][]string, len(candidates))
	for i, c := range candidates {
		tokensOf[i] = uniqueTokens(c.normalized)
		for _, token := range tokensOf[i] {
			buckets[token] = append(buckets[token], i)
		}
	}

	for i := range candidates {
		sharesToken := make(map[int]bool)
		for _, token := range tokensOf[i] {
			for _, j := range buckets[token] {
				if j > i {
					sharesToken[j] = true
				}
			}
		}
		for j := i + 1; j < len(candidates); j++ {
			if !sharesToken[j] && bounder.ScoreBound(candidates[i].normalized, candidates[j].normalized) < threshold {
				continue
			}
			if !visit(i, j) {
				return
			}
		}
	}
}

func uniqueTokens(normalized string) []string {
	tokens := normalizer.Tokens(normalized)
	unique := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if !seen[token] {
			seen[token] = true
			unique = append(unique, token)
		}
	}
	return unique
}
