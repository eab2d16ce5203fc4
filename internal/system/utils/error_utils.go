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
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	customerrors "github.com/wso2/entity-consolidation-service/internal/system/errors"
)

const maxRequestBodyBytes = 1 << 20

// DecodeJSONBody decodes the request body into target, rejecting unknown fields and trailing data.
func DecodeJSONBody(r *http.Request, target interface{}, resourceName string) error {

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return badRequest(DescribeDecodeError(err, resourceName))
	}
	if decoder.More() {
		return badRequest(fmt.Sprintf("Unexpected data after the %s request body.", resourceName))
	}
	return nil
}

func badRequest(description string) error {
	return customerrors.NewClientError(customerrors.Describe(customerrors.BAD_REQUEST, description),
		http.StatusBadRequest)
}

// DescribeDecodeError turns a JSON decoding failure into a message safe to return to callers.
func DescribeDecodeError(err error, resourceName string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, io.EOF) {
		return fmt.Sprintf("Request body for %s is empty.", resourceName)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Sprintf("Request body for %s is truncated.", resourceName)
	}

	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return fmt.Sprintf("Unknown field %s in %s request body.", field, resourceName)
	}

	var se *json.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("Malformed JSON in %s request body at offset %d.", resourceName, se.Offset)
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if ute.Field == "" {
			return fmt.Sprintf("Request body for %s must be a JSON object.", resourceName)
		}
		return fmt.Sprintf("Invalid type for field '%s' in %s request body: expected %s.",
			ute.Field, resourceName, ute.Type.String())
	}

	return fmt.Sprintf("Invalid JSON payload for %s.", resourceName)
}
