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
	"reflect"
	"strings"
	"time"

	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

// Fields holds the profile fields of an entity. The engine treats them as opaque values except when
// resolving conflicts during a merge.
type Fields map[string]interface{}

// Value implements driver.Valuer so Fields can be written to a JSONB column.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for JSONB columns.
func (f *Fields) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for entity fields", src)
	}
	decoded := Fields{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*f = decoded
	return nil
}

// Entity is a registry record describing a person or organization.
type Entity struct {
	ID          int64     `json:"id" db:"id"`
	Kind        string    `json:"kind" db:"kind"`
	DisplayName string    `json:"display_name" db:"display_name"`
	TaxID       *string   `json:"tax_id,omitempty" db:"tax_id"`
	Status      string    `json:"status" db:"status"`
	Fields      Fields    `json:"fields" db:"fields"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the entity can take part in detection and merges.
func (e *Entity) IsActive() bool {
	return e.Status == constants.StatusActive
}

// TaxIDValue returns the tax identifier or an empty string when absent.
func (e *Entity) TaxIDValue() string {
	if e.TaxID == nil {
		return ""
	}
	return *e.TaxID
}

// CoreValue returns the value of one of the core fields, or nil when name is a profile field.
func (e *Entity) CoreValue(name string) (interface{}, bool) {
	switch name {
	case constants.FieldKind:
		return e.Kind, true
	case constants.FieldDisplayName:
		return e.DisplayName, true
	case constants.FieldTaxID:
		if e.TaxID == nil {
			return nil, true
		}
		return *e.TaxID, true
	}
	return nil, false
}

// FieldValue returns the value of a core or profile field.
func (e *Entity) FieldValue(name string) interface{} {
	if value, ok := e.CoreValue(name); ok {
		return value
	}
	return e.Fields[name]
}

// SetFieldValue assigns a core or profile field.
func (e *Entity) SetFieldValue(name string, value interface{}) {
	switch name {
	case constants.FieldKind:
		e.Kind, _ = value.(string)
	case constants.FieldDisplayName:
		e.DisplayName, _ = value.(string)
	case constants.FieldTaxID:
		if s, ok := value.(string); ok && s != "" {
			e.TaxID = &s
		} else {
			e.TaxID = nil
		}
	default:
		if e.Fields == nil {
			e.Fields = Fields{}
		}
		if value == nil {
			delete(e.Fields, name)
			return
		}
		e.Fields[name] = value
	}
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	clone := *e
	if e.TaxID != nil {
		taxID := *e.TaxID
		clone.TaxID = &taxID
	}
	if e.Fields != nil {
		clone.Fields = make(Fields, len(e.Fields))
		for k, v := range e.Fields {
			clone.Fields[k] = cloneValue(v)
		}
	}
	return &clone
}

func cloneValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, inner := range value {
			out[k] = cloneValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, inner := range value {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// IsEmptyValue reports whether a field value counts as missing: nil, a blank string or an empty
// list or map.
func IsEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
