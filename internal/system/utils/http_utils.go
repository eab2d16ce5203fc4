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

package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	ecscontext "github.com/wso2/entity-consolidation-service/internal/system/context"
	customerrors "github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error
func HandleError(w http.ResponseWriter, r *http.Request, err error) {

	traceID := ecscontext.GetTraceID(r.Context())

	var clientError *customerrors.ClientError
	if errors.As(err, &clientError) {
		body := clientError.ErrorMessage
		body.TraceID = traceID
		writeError(w, clientError.StatusCode, body)
		return
	}

	logger := log.GetLogger().With(log.String("trace_id", traceID))
	var serverError *customerrors.ServerError
	if errors.As(err, &serverError) {
		logger.Error(serverError.Message, log.Error(err))
		status := serverError.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		body := serverError.ErrorMessage
		body.TraceID = traceID
		writeError(w, status, body)
		return
	}

	logger.Error("Unclassified error while serving request.", log.Error(err))
	writeError(w, http.StatusInternalServerError, customerrors.ErrorMessage{
		Code:    "ECS-15000",
		Message: "Internal server error",
		TraceID: traceID,
	})
}

func writeError(w http.ResponseWriter, status int, body customerrors.ErrorMessage) {

	w.Header().Set("Content-Type", "application/json")
	if body.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RespondJSON writes the payload as a JSON document with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.GetLogger().Error("Failed to encode response payload.", log.Error(err))
	}
}

// ParseIDSegment parses a positive entity id from a path segment.
func ParseIDSegment(segment string) (int64, error) {

	id, err := strconv.ParseInt(strings.TrimSpace(segment), 10, 64)
	if err != nil || id <= 0 {
		return 0, customerrors.NewClientError(customerrors.Describe(customerrors.BAD_REQUEST,
			"Entity id must be a positive integer."), http.StatusBadRequest)
	}
	return id, nil
}

// WithRequestContext attaches the trace id and the calling actor to the request context
// and echoes the trace id back in the response headers.
func WithRequestContext(actorOf func(r *http.Request) string, next http.Handler) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(constants.TraceIDHeader)
		if traceID == "" {
			traceID = ecscontext.GenerateTraceID()
		}
		ctx := ecscontext.WithTraceID(r.Context(), traceID)
		if actorOf != nil {
			ctx = ecscontext.WithActor(ctx, actorOf(r))
		}
		w.Header().Set(constants.TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
