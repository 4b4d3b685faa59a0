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

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		err := ValidateValue("doc-1", "required,document_id,max=120")
		assert.Nil(t, err, "valid document ID")

		err = ValidateValue("My.Doc_~1", "required,document_id,max=120")
		assert.Nil(t, err, "valid document ID with case-sensitive letters")

		err = ValidateValue("invalid doc", "required,document_id,max=120")
		assert.Equal(t, "document_id", err.(Violation).Tag)

		err = ValidateValue("doc/1", "required,document_id,max=120")
		assert.Equal(t, "document_id", err.(Violation).Tag)

		err = ValidateValue("", "required,document_id,max=120")
		assert.Equal(t, "required", err.(Violation).Tag)
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		type Item struct {
			Kind string `validate:"required,oneof=A B"`
		}
		type Request struct {
			ID    string  `validate:"required,document_id"`
			Count int     `validate:"gte=0"`
			Items []*Item `validate:"dive"`
		}

		err := ValidateStruct(Request{ID: "doc 1", Count: -1, Items: []*Item{{Kind: "C"}}})
		structError := &StructError{}
		require.True(t, errors.As(err, &structError))
		assert.Len(t, structError.Violations, 3)
		assert.Equal(t, "Request.Items[0].Kind", structError.Violations[2].Field)
		assert.Contains(t, err.Error(), "Count must be 0 or greater")

		assert.NoError(t, ValidateStruct(Request{ID: "doc-1", Items: []*Item{{Kind: "A"}}}))
	})

	t.Run("custom rule test", func(t *testing.T) {
		_ = RegisterValidation("custom", func(v FieldLevel) bool {
			return v.Field().String() == "custom"
		})
		_ = RegisterTranslation("custom", "{0} must be custom")

		err := ValidateValue("custom-invalid-value", "required,custom")
		assert.Equal(t, "custom", err.(Violation).Tag)
		assert.NoError(t, ValidateValue("custom", "required,custom"))
	})
}
