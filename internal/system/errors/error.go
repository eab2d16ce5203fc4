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

package errors

import (
	"errors"
	"fmt"
)

type ErrorMessage struct {
	Code        string `json:"error_code"`
	Message     string `json:"error_message"`
	Description string `json:"error_description"`
	TraceID     string `json:"trace_id,omitempty"`
	Retryable   bool   `json:"retryable"`
}

type ClientError struct {
	ErrorMessage
	StatusCode int
}

type ServerError struct {
	ErrorMessage
	StatusCode int
	Err        error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func (e *ClientError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("[%s] %s %s", e.Code, e.Message, e.Description)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewServerError(msg ErrorMessage, cause error) *ServerError {
	return &ServerError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

// NewServerErrorWithStatus creates a server error that is reported with a status other than 500.
func NewServerErrorWithStatus(msg ErrorMessage, cause error, code int) *ServerError {
	return &ServerError{
		ErrorMessage: msg,
		StatusCode:   code,
		Err:          cause,
	}
}

func NewClientError(msg ErrorMessage, code int) *ClientError {
	return &ClientError{
		ErrorMessage: msg,
		StatusCode:   code,
	}
}

func NewServerErrorWithTraceID(msg ErrorMessage, cause error, traceID string) *ServerError {
	msg.TraceID = traceID
	return &ServerError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

func NewClientErrorWithTraceID(msg ErrorMessage, code int, traceID string) *ClientError {
	msg.TraceID = traceID
	return &ClientError{
		ErrorMessage: msg,
		StatusCode:   code,
	}
}

// Describe returns a copy of the catalogue message with the given description.
func Describe(msg ErrorMessage, description string) ErrorMessage {
	msg.Description = description
	return msg
}

// messageOf returns the catalogue message carried by err, if any.
func messageOf(err error) (ErrorMessage, bool) {
	var clientError *ClientError
	if errors.As(err, &clientError) {
		return clientError.ErrorMessage, true
	}
	var serverError *ServerError
	if errors.As(err, &serverError) {
		return serverError.ErrorMessage, true
	}
	return ErrorMessage{}, false
}

// HasCode reports whether err carries the code of the given catalogue message.
func HasCode(err error, msg ErrorMessage) bool {
	carried, ok := messageOf(err)
	return ok && carried.Code == msg.Code
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	carried, ok := messageOf(err)
	return ok && carried.Retryable
}
