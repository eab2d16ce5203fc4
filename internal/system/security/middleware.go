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

package security

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
	"github.com/wso2/entity-consolidation-service/internal/system/utils"
)

// RateLimiter throttles expensive endpoints with a token bucket.
// A nil limiter admits every request.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter refilling perSecond tokens up to burst.
// A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {

	if perSecond <= 0 {
		return &RateLimiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether one more request may proceed now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter == nil || rl.limiter.Allow()
}

// Middleware rejects requests over the limit with a retryable 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow() {
			log.GetLogger().Debug("Request rejected by rate limiter.", log.String("path", r.URL.Path))
			utils.HandleError(w, r, errors.NewClientError(errors.RATE_LIMITED, http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}
