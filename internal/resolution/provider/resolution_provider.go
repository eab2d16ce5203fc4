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

package provider

import (
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/resolution/service"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
)

// ResolutionProviderInterface defines the interface for the resolution provider.
type ResolutionProviderInterface interface {
	GetResolutionService() service.ResolutionServiceInterface
}

// ResolutionProvider is the default implementation of the ResolutionProviderInterface.
type ResolutionProvider struct {
	resolutionService service.ResolutionServiceInterface
}

// NewResolutionProvider creates a new instance of ResolutionProvider.
func NewResolutionProvider(registry store.RegistryStore, conf config.ResolutionConfig) *ResolutionProvider {

	return &ResolutionProvider{
		resolutionService: service.NewResolutionService(registry, conf),
	}
}

// GetResolutionService returns the resolution service instance.
func (rp *ResolutionProvider) GetResolutionService() service.ResolutionServiceInterface {

	return rp.resolutionService
}
