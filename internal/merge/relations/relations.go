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
	"fmt"
	"regexp"

	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DependentRelation is a collection of records that reference entities by id.
type DependentRelation interface {
	Name() string
	// RepointReferences moves every reference to an id in fromIDs onto toID. Running it again is a no-op.
	RepointReferences(ctx context.Context, tx store.RegistryTx, fromIDs []int64, toID int64) (int64, error)
	// CountReferences counts records still referencing any of ids.
	CountReferences(ctx context.Context, tx store.RegistryTx, ids []int64) (int64, error)
}

// ColumnRelation is a table holding entity ids in one or more columns.
type ColumnRelation struct {
	name    string
	table   string
	columns []string
}

func NewColumnRelation(name, table string, columns ...string) *ColumnRelation {
	return &ColumnRelation{name: name, table: table, columns: columns}
}

func (r *ColumnRelation) Name() string {
	return r.name
}

func (r *ColumnRelation) RepointReferences(ctx context.Context, tx store.RegistryTx, fromIDs []int64,
	toID int64) (int64, error) {

	var total int64
	for _, column := range r.columns {
		affected, err := tx.RepointReferences(ctx, r.table, column, fromIDs, toID)
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

func (r *ColumnRelation) CountReferences(ctx context.Context, tx store.RegistryTx, ids []int64) (int64, error) {
	return tx.CountReferences(ctx, r.table, r.columns, ids)
}

// PairRelation is a link table joining two entities, such as household members. Links between
// members of the same merge collapse to self links and are removed.
type PairRelation struct {
	name    string
	table   string
	columnA string
	columnB string
}

func NewPairRelation(name, table, columnA, columnB string) *PairRelation {
	return &PairRelation{name: name, table: table, columnA: columnA, columnB: columnB}
}

func (r *PairRelation) Name() string {
	return r.name
}

func (r *PairRelation) RepointReferences(ctx context.Context, tx store.RegistryTx, fromIDs []int64,
	toID int64) (int64, error) {

	first, err := tx.RepointReferences(ctx, r.table, r.columnA, fromIDs, toID)
	if err != nil {
		return 0, err
	}
	second, err := tx.RepointReferences(ctx, r.table, r.columnB, fromIDs, toID)
	if err != nil {
		return first, err
	}
	if _, err := tx.DeleteSelfReferences(ctx, r.table, r.columnA, r.columnB, toID); err != nil {
		return first + second, err
	}
	return first + second, nil
}

func (r *PairRelation) CountReferences(ctx context.Context, tx store.RegistryTx, ids []int64) (int64, error) {
	return tx.CountReferences(ctx, r.table, []string{r.columnA, r.columnB}, ids)
}

// NewRegistry builds the dependent relations described by the configuration.
func NewRegistry(confs []config.RelationConfig) ([]DependentRelation, error) {

	registry := make([]DependentRelation, 0, len(confs))
	names := make(map[string]bool, len(confs))
	for _, conf := range confs {
		if names[conf.Name] {
			return nil, fmt.Errorf("dependent relation %q is registered twice", conf.Name)
		}
		names[conf.Name] = true

		if !identifierPattern.MatchString(conf.Table) {
			return nil, fmt.Errorf("dependent relation %q has an invalid table name %q", conf.Name, conf.Table)
		}
		if len(conf.Columns) == 0 {
			return nil, fmt.Errorf("dependent relation %q has no columns", conf.Name)
		}
		for _, column := range conf.Columns {
			if !identifierPattern.MatchString(column) {
				return nil, fmt.Errorf("dependent relation %q has an invalid column name %q", conf.Name, column)
			}
		}

		switch conf.Kind {
		case constants.RelationKindPair:
			if len(conf.Columns) != 2 {
				return nil, fmt.Errorf("pair relation %q needs exactly two columns", conf.Name)
			}
			registry = append(registry, NewPairRelation(conf.Name, conf.Table, conf.Columns[0], conf.Columns[1]))
		case constants.RelationKindColumn, "":
			registry = append(registry, NewColumnRelation(conf.Name, conf.Table, conf.Columns...))
		default:
			return nil, fmt.Errorf("dependent relation %q has unknown kind %q", conf.Name, conf.Kind)
		}
	}
	return registry, nil
}
