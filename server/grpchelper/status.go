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

// Package grpchelper provides helper functions for gRPC.
package grpchelper

import (
	"context"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/runtime/protoiface"

	"github.com/yorkie-team/textsync/internal/validation"
	"github.com/yorkie-team/textsync/pkg/errors"
)

// errorDomain is the domain of ErrorInfo details attached to status errors.
const errorDomain = "textsync"

func badRequestFromError(err error) (protoiface.MessageV1, bool) {
	var structErr *validation.StructError
	if !errors.As(err, &structErr) {
		return nil, false
	}

	br := &errdetails.BadRequest{}
	for _, violation := range structErr.Violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       violation.Field,
			Description: violation.Description,
		})
	}
	return br, true
}

// codeOf returns the gRPC code of the given error. Status codes of
// pkg/errors share their values with gRPC codes.
func codeOf(err error) codes.Code {
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}

	var structErr *validation.StructError
	if errors.As(err, &structErr) {
		return codes.InvalidArgument
	}

	if st := errors.StatusOf(err); st != 0 {
		return codes.Code(st)
	}

	return codes.Internal
}

// ToStatusError returns a status.Error from the given logic error. If an error
// occurs while executing logic in API handler, gRPC status.error should be
// returned so that the client can know more about the status of the request.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	st := status.New(codeOf(err), err.Error())
	if details, ok := badRequestFromError(err); ok {
		if withDetails, detailErr := st.WithDetails(details); detailErr == nil {
			st = withDetails
		}
	}
	if code := errors.CodeOf(err); code != "" {
		info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}
		if withDetails, detailErr := st.WithDetails(info); detailErr == nil {
			st = withDetails
		}
	}

	return st.Err()
}

// ReasonOf returns the error code carried by the given status error, or an
// empty string if it has none.
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}

	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.Domain == errorDomain {
			return info.Reason
		}
	}
	return ""
}
