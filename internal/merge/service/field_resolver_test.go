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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
)

func strPtr(v string) *string {
	return &v
}

func TestResolveFields_SurvivorFallsBackToOtherMembers(t *testing.T) {
	members := []*model.Entity{
		{ID: 1, Kind: "individual", DisplayName: "Ana Souza", Fields: model.Fields{"phone": "", "email": "ana@a.pt"}},
		{ID: 2, Kind: "individual", DisplayName: "Ana Sousa", TaxID: strPtr("123"), Fields: model.Fields{"phone": "555-1234"}},
		{ID: 3, Kind: "individual", DisplayName: "A. Sousa", Fields: model.Fields{"phone": "555-9999", "city": "Porto"}},
	}

	consolidated, resolutions := ResolveFields(members, 1, nil)

	assert.Equal(t, "Ana Souza", consolidated.DisplayName)
	assert.Equal(t, "123", consolidated.TaxIDValue())
	assert.Equal(t, "555-1234", consolidated.Fields["phone"])
	assert.Equal(t, "ana@a.pt", consolidated.Fields["email"])
	assert.Equal(t, "Porto", consolidated.Fields["city"])
	assert.Equal(t, model.IDMap{
		"kind": 1, "display_name": 1, "tax_id": 2, "phone": 2, "email": 1, "city": 3,
	}, resolutions)
}

func TestResolveFields_OverridesWin(t *testing.T) {
	members := []*model.Entity{
		{ID: 4, Kind: "individual", DisplayName: "Maria Silva", Fields: model.Fields{"phone": "111"}},
		{ID: 8, Kind: "organization", DisplayName: "Maria Silva Lda", Fields: model.Fields{"phone": "222"}},
	}

	consolidated, resolutions := ResolveFields(members, 4, map[string]int64{"display_name": 8, "phone": 8, "fax": 8})

	assert.Equal(t, "Maria Silva Lda", consolidated.DisplayName)
	assert.Equal(t, "individual", consolidated.Kind)
	assert.Equal(t, "222", consolidated.Fields["phone"])
	assert.NotContains(t, consolidated.Fields, "fax")
	assert.Equal(t, int64(8), resolutions["display_name"])
	assert.Equal(t, int64(8), resolutions["fax"])
}

func TestResolveFields_DoesNotMutateMembers(t *testing.T) {
	survivor := &model.Entity{ID: 1, DisplayName: "A", Fields: model.Fields{}}
	other := &model.Entity{ID: 2, DisplayName: "B", Fields: model.Fields{"phone": "1"}}

	_, _ = ResolveFields([]*model.Entity{survivor, other}, 1, nil)

	assert.Empty(t, survivor.Fields)
}
