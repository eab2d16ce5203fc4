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

package scripts

const entityColumns = `id, kind, display_name, tax_id, status, fields, created_at, updated_at`

var GetActiveEntities = map[string]string{
	"postgres": `SELECT ` + entityColumns + ` FROM entities WHERE status = 'active' ORDER BY id`,
}

var GetEntityByID = map[string]string{
	"postgres": `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`,
}

var GetEntitiesForUpdate = map[string]string{
	"postgres": `SELECT ` + entityColumns + ` FROM entities WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
}

var UpdateEntity = map[string]string{
	"postgres": `UPDATE entities SET kind = $2, display_name = $3, tax_id = $4, fields = $5, updated_at = $6 
       WHERE id = $1`,
}

var RetireEntity = map[string]string{
	"postgres": `UPDATE entities SET status = 'retired', updated_at = $2 WHERE id = $1 AND status = 'active'`,
}

var InsertRetiredEntity = map[string]string{
	"postgres": `INSERT INTO retired_entities (entity_id, survivor_id, merge_operation_id, retired_at) 
       VALUES ($1, $2, $3, $4)`,
}

var GetRetiredEntity = map[string]string{
	"postgres": `SELECT entity_id, survivor_id, merge_operation_id, retired_at FROM retired_entities 
       WHERE entity_id = $1`,
}

var InsertMergeOperation = map[string]string{
	"postgres": `INSERT INTO merge_operations (id, survivor_id, member_ids, retired_ids, field_resolutions, 
       repointed, actor, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
}

var GetMergeOperation = map[string]string{
	"postgres": `SELECT id, survivor_id, member_ids, retired_ids, field_resolutions, repointed, actor, created_at 
       FROM merge_operations WHERE id = $1`,
}

var ListMergeOperationsForEntity = map[string]string{
	"postgres": `SELECT id, survivor_id, member_ids, retired_ids, field_resolutions, repointed, actor, created_at 
       FROM merge_operations WHERE survivor_id = $1 OR $1 = ANY(retired_ids) ORDER BY created_at DESC, id`,
}

var GetRegistryRevision = map[string]string{
	"postgres": `SELECT COUNT(*) AS entity_count, COALESCE(MAX(updated_at), 'epoch'::timestamptz) AS last_updated 
       FROM entities`,
}

var TryEntityLock = map[string]string{
	"postgres": `SELECT pg_try_advisory_xact_lock($1)`,
}
