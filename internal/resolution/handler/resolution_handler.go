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

package handler

import (
	"net/http"
	"strings"

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/resolution/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/utils"
)

type ResolutionHandler struct {
	provider provider.ResolutionProviderInterface
}

func NewResolutionHandler(resolutionProvider provider.ResolutionProviderInterface) *ResolutionHandler {

	return &ResolutionHandler{provider: resolutionProvider}
}

// ResolveEntity handles redirecting a possibly retired entity id to its current survivor.
func (rh *ResolutionHandler) ResolveEntity(w http.ResponseWriter, r *http.Request, idSegment string) {

	id, err := utils.ParseIDSegment(idSegment)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	resolved, err := rh.provider.GetResolutionService().Resolve(r.Context(), id)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, model.ResolveResponse{
		RequestedID: id,
		ResolvedID:  resolved,
		Redirected:  resolved != id,
	})
}

// GetEntityMerges handles listing the merge operations an entity took part in, newest first.
func (rh *ResolutionHandler) GetEntityMerges(w http.ResponseWriter, r *http.Request, idSegment string) {

	id, err := utils.ParseIDSegment(idSegment)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	operations, err := rh.provider.GetResolutionService().ListMergeOperations(r.Context(), id)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	if operations == nil {
		operations = []model.MergeOperation{}
	}
	utils.RespondJSON(w, http.StatusOK, operations)
}

// GetMergeOperation handles fetching a single merge audit record.
func (rh *ResolutionHandler) GetMergeOperation(w http.ResponseWriter, r *http.Request, operationID string) {

	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		utils.HandleError(w, r, errors.NewClientError(errors.Describe(errors.BAD_REQUEST,
			"Merge operation id is required."), http.StatusBadRequest))
		return
	}
	operation, err := rh.provider.GetResolutionService().GetMergeOperation(r.Context(), operationID)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, operation)
}
