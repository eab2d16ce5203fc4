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

package constants

const ApiBasePath = "/api/v1"
const DuplicatesApiPath = "/duplicates"
const MergesApiPath = "/merges"
const EntitiesApiPath = "/entities"
const HealthApiPath = "/health"

const DeploymentConfigFile = "/repository/conf/deployment.yaml"

type contextKey string

const TraceIDContextKey contextKey = "trace_id"
const ActorContextKey contextKey = "actor"

const TraceIDHeader = "X-Trace-Id"
const ActorHeader = "X-Actor"
const SystemActor = "system"

const (
	ThresholdQueryParam = "threshold"
	MinFuzzyThreshold   = 50
	MaxFuzzyThreshold   = 100
	ExactMatchScore     = 100
)

// Entity kinds.
const (
	KindIndividual   = "individual"
	KindOrganization = "organization"
)

// Entity statuses.
const (
	StatusActive  = "active"
	StatusRetired = "retired"
)

// Duplicate group kinds.
const (
	GroupKindExact = "exact"
	GroupKindFuzzy = "fuzzy"
)

// Core fields resolved alongside the profile fields during a merge.
const (
	FieldKind        = "kind"
	FieldDisplayName = "display_name"
	FieldTaxID       = "tax_id"
)

// Dependent relation kinds.
const (
	RelationKindColumn = "column"
	RelationKindPair   = "pair"
)

// Blocking strategies for fuzzy detection.
const (
	BlockingToken = "token"
	BlockingNone  = "none"
)

const (
	DataSourcePostgres = "postgres"
	DataSourceMemory   = "memory"
)
