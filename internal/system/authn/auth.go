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

package authn

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

const bearerPrefix = "Bearer "

// ActorFromRequest identifies who issued the request. The subject of a bearer JWT wins over the
// actor header; requests carrying neither are attributed to the system actor.
// Token signatures are verified by the gateway in front of the service, not here.
func ActorFromRequest(r *http.Request) string {

	if token, ok := bearerToken(r); ok {
		claims, err := ParseJWTClaims(token)
		if err == nil {
			if sub, ok := claims["sub"].(string); ok && strings.TrimSpace(sub) != "" {
				return sub
			}
		}
	}
	if actor := strings.TrimSpace(r.Header.Get(constants.ActorHeader)); actor != "" {
		return actor
	}
	return constants.SystemActor
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, strings.Count(token, ".") == 2
}

// ParseJWTClaims parses claims from a JWT without verifying the signature
func ParseJWTClaims(tokenString string) (jwt.MapClaims, error) {

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		log.GetLogger().Debug("Error occurred when parsing claims from JWT token.", log.Error(err))
		return nil, err
	}
	return claims, nil
}
