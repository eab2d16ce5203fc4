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

package errors

const errorPrefix = "ECS-"

var (
	// Client error codes

	VALIDATION = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Invalid request.",
	}

	NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Entity not found.",
	}

	STALE_GROUP = ErrorMessage{
		Code:        errorPrefix + "10003",
		Message:     "Duplicate group is stale.",
		Description: "One or more members are no longer active. Re-run duplicate detection.",
	}

	CONCURRENT_MERGE = ErrorMessage{
		Code:        errorPrefix + "10004",
		Message:     "Entity is locked by another merge.",
		Description: "Another merge is consolidating one of the members. Retry the request.",
		Retryable:   true,
	}

	RATE_LIMITED = ErrorMessage{
		Code:        errorPrefix + "10005",
		Message:     "Too many detection requests.",
		Description: "Duplicate detection is rate limited. Retry later.",
		Retryable:   true,
	}

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "10006",
		Message: "Bad request.",
	}

	MERGE_OPERATION_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10007",
		Message: "Merge operation not found.",
	}

	// Server error codes

	PARTIAL_DEPENDENCY_FAILURE = ErrorMessage{
		Code:      errorPrefix + "15001",
		Message:   "Repointing dependent records failed. The merge was rolled back.",
		Retryable: true,
	}

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Unable to initialize database client.",
	}

	EXECUTE_QUERY = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while executing query.",
	}

	BEGIN_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Unable to begin transaction.",
	}

	COMMIT_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Unable to commit transaction.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Unable to generate lock key.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while acquiring entity lock.",
	}

	DETECTION_FAILED = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Duplicate detection failed.",
	}

	DETECTION_CANCELLED = ErrorMessage{
		Code:      errorPrefix + "15009",
		Message:   "Duplicate detection was cancelled or timed out.",
		Retryable: true,
	}

	REGISTRY_UNAVAILABLE = ErrorMessage{
		Code:      errorPrefix + "15010",
		Message:   "Entity registry is unavailable.",
		Retryable: true,
	}

	MERGE_FAILED = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Merge failed. The merge was rolled back.",
	}

	ENCODE_ERROR = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Unable to encode stored value.",
	}
)
