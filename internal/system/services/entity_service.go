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

	"github.com/wso2/entity-consolidation-service/internal/resolution/handler"
	"github.com/wso2/entity-consolidation-service/internal/resolution/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
)

type EntityService struct {
	resolutionHandler *handler.ResolutionHandler
}

func NewEntityService(resolutions provider.ResolutionProviderInterface) *EntityService {
	return &EntityService{
		resolutionHandler: handler.NewResolutionHandler(resolutions),
	}
}

// Route handles the per entity endpoints: /entities/{id}/resolve and /entities/{id}/merges.
func (s *EntityService) Route(w http.ResponseWriter, r *http.Request) {

	path := strings.TrimSuffix(r.URL.Path, "/")
	parts := strings.Split(strings.TrimPrefix(path, constants.EntitiesApiPath+"/"), "/")
	if r.Method != http.MethodGet || len(parts) != 2 || !strings.HasPrefix(path, constants.EntitiesApiPath+"/") {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "resolve":
		s.resolutionHandler.ResolveEntity(w, r, parts[0])
	case "merges":
		s.resolutionHandler.GetEntityMerges(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}
