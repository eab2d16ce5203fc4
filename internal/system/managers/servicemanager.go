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

package managers

import (
	"net/http"
	"strings"

	dedupProvider "github.com/wso2/entity-consolidation-service/internal/dedup/provider"
	healthProvider "github.com/wso2/entity-consolidation-service/internal/health_check/provider"
	mergeProvider "github.com/wso2/entity-consolidation-service/internal/merge/provider"
	resolutionProvider "github.com/wso2/entity-consolidation-service/internal/resolution/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/authn"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/security"
	"github.com/wso2/entity-consolidation-service/internal/system/services"
	"github.com/wso2/entity-consolidation-service/internal/system/utils"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
}

// Providers carries the wired feature providers the HTTP services route to.
type Providers struct {
	Dedup            dedupProvider.DedupProviderInterface
	Merge            mergeProvider.MergeProviderInterface
	Resolution       resolutionProvider.ResolutionProviderInterface
	Health           healthProvider.HealthCheckProviderInterface
	DefaultThreshold int
	DetectionLimiter *security.RateLimiter
}

type ServiceManager struct {
	mux       *http.ServeMux
	providers Providers
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux, providers Providers) ServiceManagerInterface {

	return &ServiceManager{
		mux:       mux,
		providers: providers,
	}
}

func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	healthService := services.NewHealthService(sm.providers.Health)
	sm.mux.HandleFunc("/health", healthService.Route)
	sm.mux.HandleFunc("/ready", healthService.Route)

	dedupService := services.NewDedupService(sm.providers.Dedup, sm.providers.DefaultThreshold)
	mergeService := services.NewMergeService(sm.providers.Merge, sm.providers.Resolution)
	entityService := services.NewEntityService(sm.providers.Resolution)

	limiter := sm.providers.DetectionLimiter
	if limiter == nil {
		limiter = security.NewRateLimiter(0, 0)
	}
	detection := limiter.Middleware(http.HandlerFunc(dedupService.Route))

	dispatcher := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Internal path after base path stripping
		path := strings.TrimSuffix(r.URL.Path, "/")

		switch {
		case strings.HasPrefix(path, constants.DuplicatesApiPath+"/"):
			detection.ServeHTTP(w, r)
		case path == constants.MergesApiPath || strings.HasPrefix(path, constants.MergesApiPath+"/"):
			mergeService.Route(w, r)
		case strings.HasPrefix(path, constants.EntitiesApiPath+"/"):
			entityService.Route(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	sm.mux.Handle(apiBasePath+"/",
		utils.WithRequestContext(authn.ActorFromRequest, http.StripPrefix(apiBasePath, dispatcher)))
	return nil
}
