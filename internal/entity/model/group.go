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

// DuplicateGroup is a set of active entities believed to describe the same real-world party.
type DuplicateGroup struct {
	Kind    string  `json:"kind"`
	Members []int64 `json:"members"`
	Score   int     `json:"score"`
	Key     string  `json:"key,omitempty"`
}

// DuplicateGroupsResponse is returned by the detection endpoints.
type DuplicateGroupsResponse struct {
	Kind      string           `json:"kind"`
	Threshold int              `json:"threshold,omitempty"`
	Groups    []DuplicateGroup `json:"groups"`
}
