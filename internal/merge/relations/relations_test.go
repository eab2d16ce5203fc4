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

package relations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
)

func TestNewRegistry_DefaultRelations(t *testing.T) {
	conf := config.Config{}
	conf.ApplyDefaults()

	registry, err := NewRegistry(conf.Relations)

	require.NoError(t, err)
	require.Len(t, registry, len(config.DefaultRelations()))
	names := map[string]DependentRelation{}
	for _, relation := range registry {
		names[relation.Name()] = relation
	}
	assert.IsType(t, &PairRelation{}, names["household_relations"])
	assert.IsType(t, &ColumnRelation{}, names["legal_processes"])
}

func TestNewRegistry_RejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		conf []config.RelationConfig
	}{
		{name: "injection in table", conf: []config.RelationConfig{{Name: "x", Table: "tasks; DROP TABLE x", Columns: []string{"entity_id"}}}},
		{name: "bad column", conf: []config.RelationConfig{{Name: "x", Table: "tasks", Columns: []string{"entity id"}}}},
		{name: "pair with one column", conf: []config.RelationConfig{{Name: "x", Table: "links", Columns: []string{"a"}, Kind: "pair"}}},
		{name: "unknown kind", conf: []config.RelationConfig{{Name: "x", Table: "links", Columns: []string{"a"}, Kind: "graph"}}},
		{name: "duplicate name", conf: []config.RelationConfig{
			{Name: "x", Table: "a", Columns: []string{"entity_id"}},
			{Name: "x", Table: "b", Columns: []string{"entity_id"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.conf)
			assert.Error(t, err)
		})
	}
}

func TestColumnRelation_RepointsEveryColumn(t *testing.T) {
	s := store.NewMemoryStore(time.Millisecond)
	s.PutEntity(model.Entity{ID: 1})
	s.AddRow("legal_processes", store.Row{"entity_id": 2, "counterparty_id": 5})
	s.AddRow("legal_processes", store.Row{"entity_id": 5, "counterparty_id": 3})
	s.AddRow("legal_processes", store.Row{"entity_id": 4, "counterparty_id": 5})
	relation := NewColumnRelation("legal_processes", "legal_processes", "entity_id", "counterparty_id")
	ctx := context.Background()

	require.NoError(t, s.RunInTx(ctx, func(tx store.RegistryTx) error {
		repointed, err := relation.RepointReferences(ctx, tx, []int64{2, 3}, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, repointed)

		again, err := relation.RepointReferences(ctx, tx, []int64{2, 3}, 1)
		require.NoError(t, err)
		assert.Zero(t, again)

		remaining, err := relation.CountReferences(ctx, tx, []int64{2, 3})
		require.NoError(t, err)
		assert.Zero(t, remaining)
		return nil
	}))

	assert.Equal(t, []store.Row{
		{"entity_id": 1, "counterparty_id": 5},
		{"entity_id": 5, "counterparty_id": 1},
		{"entity_id": 4, "counterparty_id": 5},
	}, s.Rows("legal_processes"))
}

func TestPairRelation_DropsLinksInsideTheGroup(t *testing.T) {
	s := store.NewMemoryStore(time.Millisecond)
	s.AddRow("household_relations", store.Row{"entity_id": 1, "related_entity_id": 2})
	s.AddRow("household_relations", store.Row{"entity_id": 2, "related_entity_id": 9})
	relation := NewPairRelation("household_relations", "household_relations", "entity_id", "related_entity_id")
	ctx := context.Background()

	require.NoError(t, s.RunInTx(ctx, func(tx store.RegistryTx) error {
		repointed, err := relation.RepointReferences(ctx, tx, []int64{2}, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, repointed)

		remaining, err := relation.CountReferences(ctx, tx, []int64{2})
		require.NoError(t, err)
		assert.Zero(t, remaining)
		return nil
	}))

	assert.Equal(t, []store.Row{{"entity_id": 1, "related_entity_id": 9}}, s.Rows("household_relations"))
}
