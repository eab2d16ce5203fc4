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
	"github.com/wso2/entity-consolidation-service/internal/dedup/service"
	"github.com/wso2/entity-consolidation-service/internal/dedup/similarity"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
)

// DedupProviderInterface defines the interface for the duplicate detection provider.
type DedupProviderInterface interface {
	GetDedupService() service.DedupServiceInterface
}

// DedupProvider is the default implementation of the DedupProviderInterface.
type DedupProvider struct {
	dedupService *service.DedupService
}

// NewDedupProvider wires the detection service against the registry with the token scorer.
func NewDedupProvider(registry store.RegistryStore, conf config.DedupConfig) *DedupProvider {

	return &DedupProvider{
		dedupService: service.NewDedupService(registry, similarity.NewTokenScorer(), conf),
	}
}

// GetDedupService returns the detection service instance.
func (dp *DedupProvider) GetDedupService() service.DedupServiceInterface {

	return dp.dedupService
}

// InvalidateCache drops cached detection results. Merges call it after committing.
func (dp *DedupProvider) InvalidateCache() {

	dp.dedupService.InvalidateCache()
}
