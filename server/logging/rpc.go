/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RequestLogLevel represents the severity level of a failed request.
type RequestLogLevel int

// Belows are the levels of RequestLogLevel.
const (
	RequestLogDebug RequestLogLevel = iota
	RequestLogInfo
	RequestLogWarn
	RequestLogError
)

// String returns the string representation of RequestLogLevel.
func (l RequestLogLevel) String() string {
	switch l {
	case RequestLogDebug:
		return "debug"
	case RequestLogInfo:
		return "info"
	case RequestLogError:
		return "error"
	}
	return "warn"
}

// toRPCLogLevel determines the level of a failed RPC from its status code.
func toRPCLogLevel(err error) RequestLogLevel {
	if err == nil || errors.Is(err, context.Canceled) {
		return RequestLogDebug
	}

	st, ok := status.FromError(err)
	if !ok {
		return RequestLogWarn
	}

	switch st.Code() {
	case codes.Canceled:
		return RequestLogDebug
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return RequestLogInfo
	case codes.Internal, codes.DataLoss, codes.Unknown, codes.Unavailable, codes.DeadlineExceeded:
		return RequestLogError
	default:
		return RequestLogWarn
	}
}

// toHTTPLogLevel determines the level of an HTTP request from its status.
func toHTTPLogLevel(code int) RequestLogLevel {
	switch {
	case code < http.StatusBadRequest, code == http.StatusConflict:
		return RequestLogDebug
	case code < http.StatusInternalServerError:
		return RequestLogInfo
	default:
		return RequestLogError
	}
}

func logWithLevel(logger Logger, level RequestLogLevel, template string, args ...interface{}) {
	switch level {
	case RequestLogDebug:
		logger.Debugf(template, args...)
	case RequestLogInfo:
		logger.Infof(template, args...)
	case RequestLogError:
		logger.Errorf(template, args...)
	default:
		logger.Warnf(template, args...)
	}
}

// LogRPC logs the result of an RPC with the level decided by its error.
func LogRPC(logger Logger, method string, duration time.Duration, err error) {
	if err == nil {
		logger.Debugf("RPC : %q %s", method, duration)
		return
	}

	logWithLevel(logger, toRPCLogLevel(err), "RPC : %q %s => %q", method, duration, err)
}

// LogHTTP logs the result of an HTTP request with the level decided by its
// status. A conflict is an expected result of sync, so it is logged in debug.
func LogHTTP(logger Logger, method, path string, code int, duration time.Duration) {
	logWithLevel(logger, toHTTPLogLevel(code), "HTTP: %s %q %d %s", method, path, code, duration)
}
