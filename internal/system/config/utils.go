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

import (
	"fmt"
	"os"
	"path"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads the deployment file, expands environment references, applies defaults and validates it.
func LoadConfig(ecsHome, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(ecsHome, filePath))
	if err != nil {
		return nil, err
	}
	return ParseConfig(file)
}

// ParseConfig parses a deployment document.
func ParseConfig(content []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(content))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// OverrideECSRuntime holds the runtime configuration for the application
func OverrideECSRuntime(conf Config) {
	runtimeConfig = &ECSRuntime{
		Config: conf,
	}
}
