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

package config

import "sync"

// ECSRuntime holds the runtime configuration for the consolidation server.
type ECSRuntime struct {
	ECSHome string `yaml:"ecs_home"`
	Config  Config `yaml:"config"`
}

var (
	runtimeConfig *ECSRuntime
	once          sync.Once
)

// InitializeECSRuntime initializes the ECSRuntime configuration.
func InitializeECSRuntime(ecsHome string, config *Config) error {

	once.Do(func() {
		runtimeConfig = &ECSRuntime{
			ECSHome: ecsHome,
			Config:  *config,
		}
	})

	return nil
}

// GetECSRuntime returns the ECSRuntime configuration.
func GetECSRuntime() *ECSRuntime {

	if runtimeConfig == nil {
		panic("ECSRuntime is not initialized")
	}
	return runtimeConfig
}
