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

package services

import (
	"net/http"
	"strings"

	"github.com/wso2/entity-consolidation-service/internal/dedup/handler"
	"github.com/wso2/entity-consolidation-service/internal/dedup/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

type DedupService struct {
	dedupHandler *handler.DedupHandler
}

func NewDedupService(dedupProvider provider.DedupProviderInterface, defaultThreshold int) *DedupService {
	return &DedupService{
		dedupHandler: handler.NewDedupHandler(dedupProvider, defaultThreshold),
	}
}

// Route handles the duplicate detection endpoints. The path is relative to the API base path.
func (s *DedupService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodGet && path == constants.DuplicatesApiPath+"/exact":
		s.dedupHandler.GetExactDuplicates(w, r)

	case method == http.MethodGet && path == constants.DuplicatesApiPath+"/fuzzy":
		s.dedupHandler.GetFuzzyDuplicates(w, r)

	default:
		http.NotFound(w, r)
	}
}
