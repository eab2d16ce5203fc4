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

	mergeHandler "github.com/wso2/entity-consolidation-service/internal/merge/handler"
	mergeProvider "github.com/wso2/entity-consolidation-service/internal/merge/provider"
	resolutionHandler "github.com/wso2/entity-consolidation-service/internal/resolution/handler"
	resolutionProvider "github.com/wso2/entity-consolidation-service/internal/resolution/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

type MergeService struct {
	mergeHandler      *mergeHandler.MergeHandler
	resolutionHandler *resolutionHandler.ResolutionHandler
}

func NewMergeService(merges mergeProvider.MergeProviderInterface,
	resolutions resolutionProvider.ResolutionProviderInterface) *MergeService {
	return &MergeService{
		mergeHandler:      mergeHandler.NewMergeHandler(merges),
		resolutionHandler: resolutionHandler.NewResolutionHandler(resolutions),
	}
}

// Route handles the merge and merge audit endpoints.
func (s *MergeService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	method := r.Method

	switch {
	case method == http.MethodPost && path == constants.MergesApiPath:
		s.mergeHandler.MergeEntities(w, r)

	case method == http.MethodGet && strings.HasPrefix(path, constants.MergesApiPath+"/"):
		operationID := strings.TrimPrefix(path, constants.MergesApiPath+"/")
		if strings.Contains(operationID, "/") {
			http.NotFound(w, r)
			return
		}
		s.resolutionHandler.GetMergeOperation(w, r, operationID)

	default:
		http.NotFound(w, r)
	}
}
