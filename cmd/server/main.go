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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	dedupProvider "github.com/wso2/entity-consolidation-service/internal/dedup/provider"
	"github.com/wso2/entity-consolidation-service/internal/entity/store"
	healthProvider "github.com/wso2/entity-consolidation-service/internal/health_check/provider"
	mergeProvider "github.com/wso2/entity-consolidation-service/internal/merge/provider"
	"github.com/wso2/entity-consolidation-service/internal/merge/relations"
	resolutionProvider "github.com/wso2/entity-consolidation-service/internal/resolution/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/config"
	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/database/client"
	"github.com/wso2/entity-consolidation-service/internal/system/database/lock"
	"github.com/wso2/entity-consolidation-service/internal/system/database/migrations"
	dbProvider "github.com/wso2/entity-consolidation-service/internal/system/database/provider"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
	"github.com/wso2/entity-consolidation-service/internal/system/managers"
	"github.com/wso2/entity-consolidation-service/internal/system/security"
)

const shutdownGracePeriod = 15 * time.Second

func main() {
	ecsHome := getECSHome()

	envFiles, err := filepath.Glob(filepath.Join(ecsHome, "config", "*.env"))
	if err == nil && len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	// Load the configuration file
	ecsConfig, err := config.LoadConfig(ecsHome, constants.DeploymentConfigFile)
	if err != nil {
		log.GetLogger().Fatal("Failed to load configuration.", log.Error(err))
	}

	// Initialize runtime configurations.
	if err := config.InitializeECSRuntime(ecsHome, ecsConfig); err != nil {
		log.GetLogger().Fatal("Failed to initialize runtime configuration.", log.Error(err))
	}

	if err := log.Init(ecsConfig.Log.LogLevel); err != nil {
		log.GetLogger().Fatal("Failed to initialize logger.", log.Error(err))
	}
	logger := log.GetLogger()

	registry, dbClient, err := initRegistry(ecsConfig)
	if err != nil {
		logger.Fatal("Failed to initialize the entity registry.", log.Error(err))
	}
	if dbClient != nil {
		defer func() {
			_ = dbClient.Close()
		}()
	}

	mux, err := initMultiplexer(ecsConfig, registry)
	if err != nil {
		logger.Fatal("Failed to register the services.", log.Error(err))
	}

	serverAddr := fmt.Sprintf("%s:%d", ecsConfig.Addr.Host, ecsConfig.Addr.Port)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener.", log.String("address", serverAddr), log.Error(err))
	}

	server := &http.Server{
		Handler:           enableCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Entity consolidation service started.", log.String("address", serverAddr))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve requests.", log.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down entity consolidation service.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed.", log.Error(err))
	}
}

// initRegistry selects the registry backend named by the data source configuration.
func initRegistry(conf *config.Config) (store.RegistryStore, client.DBClientInterface, error) {

	if conf.DataSource.Type == constants.DataSourceMemory {
		log.GetLogger().Warn("Using the in-memory registry. Merges will not survive a restart.")
		return store.NewMemoryStore(conf.Merge.LockPollInterval), nil, nil
	}

	if conf.DataSource.MigrateOnStart {
		if err := migrations.Up(conf.DataSource); err != nil {
			return nil, nil, err
		}
	}
	provider := dbProvider.NewDBProvider(conf.DataSource)
	dbClient, err := provider.GetDBClient()
	if err != nil {
		return nil, nil, err
	}
	locker := lock.NewPostgresLock(provider.GetDBType(), conf.Merge.LockPollInterval)
	return store.NewPostgresStore(dbClient, provider.GetDBType(), locker), dbClient, nil
}

// initMultiplexer wires the feature providers and registers the services.
func initMultiplexer(conf *config.Config, registry store.RegistryStore) (*http.ServeMux, error) {

	dependents, err := relations.NewRegistry(conf.Relations)
	if err != nil {
		return nil, err
	}

	dedup := dedupProvider.NewDedupProvider(registry, conf.Dedup)
	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux, managers.Providers{
		Dedup:            dedup,
		Merge:            mergeProvider.NewMergeProvider(registry, dependents, conf.Merge, dedup),
		Resolution:       resolutionProvider.NewResolutionProvider(registry, conf.Resolution),
		Health:           healthProvider.NewHealthCheckProvider(registry, 2*time.Second),
		DefaultThreshold: conf.Dedup.DefaultThreshold,
		DetectionLimiter: security.NewRateLimiter(conf.Dedup.RateLimit, conf.Dedup.RateBurst),
	})
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		return nil, err
	}
	return mux, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Location, "+constants.TraceIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getECSHome() string {

	// Parse project directory from command line arguments.
	projectHomeFlag := flag.String("ecsHome", "", "Path to entity consolidation service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		return *projectHomeFlag
	}
	if home := os.Getenv("ECS_HOME"); home != "" {
		return home
	}
	// If no command line argument is provided, use the current working directory.
	dir, err := os.Getwd()
	if err != nil {
		log.GetLogger().Fatal("Failed to get current working directory.", log.Error(err))
	}
	return dir
}
