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
	"github.com/wso2/entity-consolidation-service/internal/merge/relations"
	"github.com/wso2/entity-consolidation-service/internal/merge/service"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
)

// MergeProviderInterface defines the interface for the merge provider.
type MergeProviderInterface interface {
	GetMergeService() service.MergeServiceInterface
}

// MergeProvider is the default implementation of the MergeProviderInterface.
type MergeProvider struct {
	mergeService service.MergeServiceInterface
}

// NewMergeProvider wires the merge service. Invalidators are notified after every committed merge.
func NewMergeProvider(registry store.RegistryStore, dependents []relations.DependentRelation,
	conf config.MergeConfig, invalidators ...service.CacheInvalidator) *MergeProvider {

	return &MergeProvider{
		mergeService: service.NewMergeService(registry, dependents, conf, invalidators...),
	}
}

// GetMergeService returns the merge service instance.
func (mp *MergeProvider) GetMergeService() service.MergeServiceInterface {

	return mp.mergeService
}
