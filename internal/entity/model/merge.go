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

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MergeRequest asks for a group of entities to be consolidated into the survivor.
type MergeRequest struct {
	Members        []int64          `json:"members" validate:"required,min=2,dive,gt=0"`
	SurvivorID     int64            `json:"survivor_id" validate:"required,gt=0"`
	FieldOverrides map[string]int64 `json:"field_overrides,omitempty" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
	Actor          string           `json:"-"`
}

// MergeOperation is the immutable audit record of one completed merge.
type MergeOperation struct {
	ID               string        `json:"id"`
	SurvivorID       int64         `json:"survivor_id"`
	MemberIDs        []int64       `json:"member_ids"`
	RetiredIDs       []int64       `json:"retired_ids"`
	FieldResolutions IDMap         `json:"field_resolutions"`
	Repointed        RelationCount `json:"repointed"`
	Actor            string        `json:"actor"`
	CreatedAt        time.Time     `json:"created_at"`
}

// MergeResult is returned by a successful merge.
type MergeResult struct {
	Survivor  *Entity         `json:"survivor"`
	Operation *MergeOperation `json:"operation"`
}

// RetiredEntity permanently records that an entity was absorbed into a survivor.
type RetiredEntity struct {
	EntityID         int64     `json:"entity_id" db:"entity_id"`
	SurvivorID       int64     `json:"survivor_id" db:"survivor_id"`
	MergeOperationID string    `json:"merge_operation_id" db:"merge_operation_id"`
	RetiredAt        time.Time `json:"retired_at" db:"retired_at"`
}

// ResolveResponse reports where an entity id currently points.
type ResolveResponse struct {
	RequestedID int64 `json:"requested_id"`
	ResolvedID  int64 `json:"resolved_id"`
	Redirected  bool  `json:"redirected"`
}

// IDMap maps a field name to the id of the member its value was taken from.
type IDMap map[string]int64

func (m IDMap) Value() (driver.Value, error) {
	return marshalJSONColumn(m)
}

func (m *IDMap) Scan(src interface{}) error {
	decoded := IDMap{}
	if err := unmarshalJSONColumn(src, &decoded); err != nil {
		return err
	}
	*m = decoded
	return nil
}

// RelationCount maps a dependent relation name to the number of rows repointed.
type RelationCount map[string]int64

func (m RelationCount) Value() (driver.Value, error) {
	return marshalJSONColumn(m)
}

func (m *RelationCount) Scan(src interface{}) error {
	decoded := RelationCount{}
	if err := unmarshalJSONColumn(src, &decoded); err != nil {
		return err
	}
	*m = decoded
	return nil
}

func marshalJSONColumn(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return "{}", nil
	}
	return string(raw), nil
}

func unmarshalJSONColumn(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported type %T for json column", src)
	}
}
