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

// Package converter provides the converter for converting the model to the
// wire types and vice versa.
package converter

import (
	"github.com/yorkie-team/textsync/pkg/errors"
)

var (
	// ErrPackRequired is returned when an empty pack is passed.
	ErrPackRequired = errors.InvalidArgument("pack required").WithCode("ErrPackRequired")

	// ErrActionRequired is returned when a nil action is passed.
	ErrActionRequired = errors.InvalidArgument("action required").WithCode("ErrActionRequired")

	// ErrContentRequired is returned when an INSERT or REPLACE action has no
	// content.
	ErrContentRequired = errors.InvalidArgument("content required").WithCode("ErrContentRequired")

	// ErrLengthRequired is returned when a DELETE action has no length.
	ErrLengthRequired = errors.InvalidArgument("length required").WithCode("ErrLengthRequired")

	// ErrUnsupportedActionType is returned when the type of an action is not
	// one of INSERT, DELETE and REPLACE.
	ErrUnsupportedActionType = errors.InvalidArgument("unsupported action type").WithCode("ErrUnsupportedActionType")
)
