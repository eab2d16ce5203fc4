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

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

const defaultReadinessTimeout = 2 * time.Second

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) error
}

// HealthCheckService is the default implementation.
type HealthCheckService struct {
	registry store.RegistryStore
	timeout  time.Duration
}

// NewHealthCheckService returns a new instance.
func NewHealthCheckService(registry store.RegistryStore, timeout time.Duration) *HealthCheckService {
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	return &HealthCheckService{registry: registry, timeout: timeout}
}

// CheckReadiness reports whether the registry answers a lightweight read within the timeout.
func (h *HealthCheckService) CheckReadiness(ctx context.Context) error {

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if _, err := h.registry.Revision(ctx); err != nil {
		log.GetLogger().Warn("Readiness check failed.", log.Error(err))
		return fmt.Errorf("registry connectivity check failed: %w", err)
	}
	return nil
}
