/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

package grpchelper

import (
	"context"
	"strconv"
	"sync/atomic"
	gotime "time"

	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"

	"github.com/yorkie-team/textsync/server/logging"
)

type reqID int32

func (c *reqID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "r" + strconv.Itoa(int(next))
}

// LoggingInterceptor is an interceptor for request logging. It puts a logger
// with the request ID into the context, converts the error of the handler to
// a status error and logs the result.
type LoggingInterceptor struct {
	reqID reqID
}

// NewLoggingInterceptor creates a new instance of LoggingInterceptor.
func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// Unary creates a unary server interceptor for request logging.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		reqLogger := logging.New(i.reqID.next())
		start := gotime.Now()

		resp, err := handler(logging.With(ctx, reqLogger), req)
		err = ToStatusError(err)
		logging.LogRPC(reqLogger, info.FullMethod, gotime.Since(start), err)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// Stream creates a stream server interceptor for request logging.
func (i *LoggingInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		reqLogger := logging.New(i.reqID.next())
		start := gotime.Now()

		wrapped := grpcmiddleware.WrapServerStream(ss)
		wrapped.WrappedContext = logging.With(ss.Context(), reqLogger)
		err := ToStatusError(handler(srv, wrapped))
		logging.LogRPC(reqLogger, info.FullMethod, gotime.Since(start), err)
		return err
	}
}
