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
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wso2/entity-consolidation-service/internal/dedup/provider"
	"github.com/wso2/entity-consolidation-service/internal/entity/model"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	ecscontext "github.com/wso2/entity-consolidation-service/internal/system/context"
	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
	"github.com/wso2/entity-consolidation-service/internal/system/utils"
)

type DedupHandler struct {
	provider         provider.DedupProviderInterface
	defaultThreshold int
}

func NewDedupHandler(dedupProvider provider.DedupProviderInterface, defaultThreshold int) *DedupHandler {

	return &DedupHandler{
		provider:         dedupProvider,
		defaultThreshold: defaultThreshold,
	}
}

// GetExactDuplicates handles listing groups of active entities sharing a normalized tax id.
func (dh *DedupHandler) GetExactDuplicates(w http.ResponseWriter, r *http.Request) {

	start := time.Now()
	groups, err := dh.provider.GetDedupService().FindExactGroups(r.Context())
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	dh.logServed(r, constants.GroupKindExact, len(groups), start)
	utils.RespondJSON(w, http.StatusOK, model.DuplicateGroupsResponse{
		Kind:   constants.GroupKindExact,
		Groups: nonNil(groups),
	})
}

// GetFuzzyDuplicates handles listing clusters of active entities with similar display names.
func (dh *DedupHandler) GetFuzzyDuplicates(w http.ResponseWriter, r *http.Request) {

	threshold, err := dh.thresholdFrom(r)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}

	start := time.Now()
	groups, err := dh.provider.GetDedupService().FindFuzzyGroups(r.Context(), threshold)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	dh.logServed(r, constants.GroupKindFuzzy, len(groups), start)
	utils.RespondJSON(w, http.StatusOK, model.DuplicateGroupsResponse{
		Kind:      constants.GroupKindFuzzy,
		Threshold: threshold,
		Groups:    nonNil(groups),
	})
}

func (dh *DedupHandler) thresholdFrom(r *http.Request) (int, error) {

	raw := strings.TrimSpace(r.URL.Query().Get(constants.ThresholdQueryParam))
	if raw == "" {
		return dh.defaultThreshold, nil
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewClientError(errors.Describe(errors.VALIDATION,
			fmt.Sprintf("threshold must be an integer, got %q", raw)), http.StatusBadRequest)
	}
	return threshold, nil
}

func (dh *DedupHandler) logServed(r *http.Request, kind string, groups int, start time.Time) {

	log.GetLogger().Elapsed("Duplicate detection served.", start,
		log.String("kind", kind),
		log.Int("groups", groups),
		log.String("trace_id", ecscontext.GetTraceID(r.Context())))
}

func nonNil(groups []model.DuplicateGroup) []model.DuplicateGroup {
	if groups == nil {
		return []model.DuplicateGroup{}
	}
	return groups
}
