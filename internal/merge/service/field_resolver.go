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

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

var coreFields = []string{constants.FieldKind, constants.FieldDisplayName, constants.FieldTaxID}

// ResolveFields computes the consolidated survivor of a group. members must be ordered by ascending
// id. For each field the override source wins, then the survivor's own non-empty value, then the
// first non-empty value among the other members. The returned map records the chosen source of
// every field that ended up with a value.
func ResolveFields(members []*model.Entity, survivorID int64,
	overrides map[string]int64) (*model.Entity, model.IDMap) {

	byID := make(map[int64]*model.Entity, len(members))
	var survivor *model.Entity
	for _, member := range members {
		byID[member.ID] = member
		if member.ID == survivorID {
			survivor = member
		}
	}

	consolidated := survivor.Clone()
	resolutions := model.IDMap{}
	for _, field := range fieldNames(members, overrides) {
		if sourceID, ok := overrides[field]; ok {
			value := byID[sourceID].FieldValue(field)
			consolidated.SetFieldValue(field, value)
			resolutions[field] = sourceID
			continue
		}
		if !model.IsEmptyValue(survivor.FieldValue(field)) {
			resolutions[field] = survivorID
			continue
		}
		for _, member := range members {
			if member.ID == survivorID {
				continue
			}
			if value := member.FieldValue(field); !model.IsEmptyValue(value) {
				consolidated.SetFieldValue(field, value)
				resolutions[field] = member.ID
				break
			}
		}
	}
	return consolidated, resolutions
}

// fieldNames returns the core fields followed by every profile field any member or override names.
func fieldNames(members []*model.Entity, overrides map[string]int64) []string {
	seen := make(map[string]bool)
	for _, field := range coreFields {
		seen[field] = true
	}
	var profile []string
	add := func(field string) {
		if !seen[field] {
			seen[field] = true
			profile = append(profile, field)
		}
	}
	for _, member := range members {
		for field := range member.Fields {
			add(field)
		}
	}
	for field := range overrides {
		add(field)
	}
	sort.Strings(profile)
	return append(append([]string{}, coreFields...), profile...)
}
