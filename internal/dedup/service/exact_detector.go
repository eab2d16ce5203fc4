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
	"sort"

	"github.com/wso2/entity-consolidation-service/internal/dedup/normalizer"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

// FindExactGroups groups active entities sharing a normalized tax identifier. Entities without an
// identifier are never grouped, and the result is a partition of the grouped entities.
func FindExactGroups(entities []model.Entity) []model.DuplicateGroup {

	byKey := make(map[string][]int64)
	for _, entity := range entities {
		if !entity.IsActive() {
			continue
		}
		key := normalizer.NormalizeIdentifier(entity.TaxIDValue())
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], entity.ID)
	}

	groups := make([]model.DuplicateGroup, 0)
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		groups = append(groups, model.DuplicateGroup{
			Kind:    constants.GroupKindExact,
			Members: members,
			Score:   constants.ExactMatchScore,
			Key:     key,
		})
	}
	sortGroups(groups)
	return groups
}

// sortGroups orders groups by their smallest member id.
func sortGroups(groups []model.DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Members[0] < groups[j].Members[0] })
}
