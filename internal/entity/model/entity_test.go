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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmptyValue(t *testing.T) {
	assert.True(t, IsEmptyValue(nil))
	assert.True(t, IsEmptyValue("   "))
	assert.True(t, IsEmptyValue([]interface{}{}))
	assert.True(t, IsEmptyValue(map[string]interface{}{}))
	assert.False(t, IsEmptyValue("555-1234"))
	assert.False(t, IsEmptyValue(false))
	assert.False(t, IsEmptyValue(0.0))
	assert.False(t, IsEmptyValue([]interface{}{"a"}))
}

func TestEntity_FieldAccessors(t *testing.T) {
	entity := &Entity{ID: 1, Kind: "individual", DisplayName: "Ana Souza"}

	entity.SetFieldValue("tax_id", "123")
	entity.SetFieldValue("phone", "555")
	entity.SetFieldValue("display_name", "Ana S. Souza")

	assert.Equal(t, "123", entity.TaxIDValue())
	assert.Equal(t, "555", entity.FieldValue("phone"))
	assert.Equal(t, "Ana S. Souza", entity.FieldValue("display_name"))

	entity.SetFieldValue("tax_id", nil)
	entity.SetFieldValue("phone", nil)
	assert.Nil(t, entity.TaxID)
	assert.NotContains(t, entity.Fields, "phone")
}

func TestEntity_CloneIsDeep(t *testing.T) {
	taxID := "123"
	original := &Entity{
		ID:     1,
		TaxID:  &taxID,
		Fields: Fields{"address": map[string]interface{}{"city": "Lisbon"}, "tags": []interface{}{"vip"}},
	}

	clone := original.Clone()
	*clone.TaxID = "999"
	clone.Fields["address"].(map[string]interface{})["city"] = "Porto"
	clone.Fields["tags"].([]interface{})[0] = "regular"

	assert.Equal(t, "123", *original.TaxID)
	assert.Equal(t, "Lisbon", original.Fields["address"].(map[string]interface{})["city"])
	assert.Equal(t, "vip", original.Fields["tags"].([]interface{})[0])
}

func TestFields_ScanAndValue(t *testing.T) {
	fields := Fields{"phone": "555"}
	raw, err := fields.Value()
	require.NoError(t, err)

	var scanned Fields
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, fields, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
	assert.Error(t, scanned.Scan(42))
}
