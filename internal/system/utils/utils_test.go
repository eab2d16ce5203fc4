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
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/entity-consolidation-service/internal/system/constants"
	ecscontext "github.com/wso2/entity-consolidation-service/internal/system/context"
	customerrors "github.com/wso2/entity-consolidation-service/internal/system/errors"
	"github.com/wso2/entity-consolidation-service/internal/system/log"
)

func TestMain(m *testing.M) {
	log.Init("ERROR")
	os.Exit(m.Run())
}

type samplePayload struct {
	Members []int64 `json:"members"`
}

func decode(body string) error {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var p samplePayload
	return DecodeJSONBody(r, &p, "merge")
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		contains string
	}{
		{"empty", "", "is empty"},
		{"unknown field", `{"members":[1],"extra":true}`, `Unknown field "extra"`},
		{"malformed", `{"members":[1,}`, "Malformed JSON"},
		{"wrong type", `{"members":"1"}`, "Invalid type for field 'members'"},
		{"not an object", `[1,2]`, "must be a JSON object"},
		{"trailing data", `{"members":[1]} {}`, "Unexpected data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decode(tc.body)
			require.Error(t, err)
			assert.True(t, customerrors.HasCode(err, customerrors.BAD_REQUEST))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}

	require.NoError(t, decode(`{"members":[1,2]}`))
}

func TestHandleErrorClientError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ecscontext.WithTraceID(r.Context(), "trace-1"))
	w := httptest.NewRecorder()

	HandleError(w, r, customerrors.NewClientError(customerrors.CONCURRENT_MERGE, http.StatusConflict))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	var body customerrors.ErrorMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, customerrors.CONCURRENT_MERGE.Code, body.Code)
	assert.Equal(t, "trace-1", body.TraceID)
	assert.True(t, body.Retryable)
}

func TestHandleErrorServerErrorStatus(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	HandleError(w, r, customerrors.NewServerError(customerrors.EXECUTE_QUERY, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	HandleError(w, r, customerrors.NewServerErrorWithStatus(customerrors.PARTIAL_DEPENDENCY_FAILURE,
		errors.New("leftover"), http.StatusBadGateway))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "leftover")

	w = httptest.NewRecorder()
	HandleError(w, r, errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestParseIDSegment(t *testing.T) {
	id, err := ParseIDSegment("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParseIDSegment(bad)
		assert.True(t, customerrors.HasCode(err, customerrors.BAD_REQUEST), bad)
	}
}

func TestWithRequestContext(t *testing.T) {
	var gotTrace, gotActor string
	handler := WithRequestContext(func(r *http.Request) string { return "alice" },
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTrace = ecscontext.GetTraceID(r.Context())
			gotActor = ecscontext.GetActor(r.Context())
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(constants.TraceIDHeader, "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "abc", gotTrace)
	assert.Equal(t, "alice", gotActor)
	assert.Equal(t, "abc", w.Header().Get(constants.TraceIDHeader))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, gotTrace)
	assert.Equal(t, gotTrace, w.Header().Get(constants.TraceIDHeader))
}
