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

	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/merge/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	ecscontext "github.com/wso2/entity-consolidation-service/internal/system/context"
	"github.com/wso2/entity-consolidation-service/internal/system/utils"
)

type MergeHandler struct {
	provider provider.MergeProviderInterface
}

func NewMergeHandler(mergeProvider provider.MergeProviderInterface) *MergeHandler {

	return &MergeHandler{provider: mergeProvider}
}

// MergeEntities handles consolidating a duplicate group into its survivor.
func (mh *MergeHandler) MergeEntities(w http.ResponseWriter, r *http.Request) {

	var request model.MergeRequest
	if err := utils.DecodeJSONBody(r, &request, "merge"); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	request.Actor = ecscontext.GetActor(r.Context())

	result, err := mh.provider.GetMergeService().Merge(r.Context(), request)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.Header().Set("Location", constants.ApiBasePath+constants.MergesApiPath+"/"+result.Operation.ID)
	utils.RespondJSON(w, http.StatusCreated, result)
}
