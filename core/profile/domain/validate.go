// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Names must fit the VARCHAR(50) columns.
const (
	minNameLength = 2
	maxNameLength = 50
)

// Validate checks every field of a profile to be created. The returned error
// joins one *ValidationError per rejected field.
func (n NewProfile) Validate() error {
	return errors.Join(
		validateName(FieldFirstName, n.FirstName),
		validateName(FieldLastName, n.LastName),
		ValidateDate(FieldDateOfBirth, n.DateOfBirth),
	)
}

// Validate checks the fields present in c. At least one field is required.
func (c ProfileChanges) Validate() error {
	if c.IsEmpty() {
		return &ValidationError{Field: "body", Reason: "must NOT have fewer than 1 properties"}
	}

	var errs []error
	if c.FirstName != nil {
		errs = append(errs, validateName(FieldFirstName, *c.FirstName))
	}
	if c.LastName != nil {
		errs = append(errs, validateName(FieldLastName, *c.LastName))
	}
	if c.DateOfBirth != nil {
		errs = append(errs, ValidateDate(FieldDateOfBirth, *c.DateOfBirth))
	}
	return errors.Join(errs...)
}

// ValidateDate accepts calendar dates in YYYY-MM-DD form only.
func ValidateDate(field Field, v string) error {
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return &ValidationError{Field: field.String(), Reason: `must match format "date"`}
	}
	return nil
}

func validateName(field Field, v string) error {
	if utf8.RuneCountInString(v) < minNameLength {
		return &ValidationError{Field: field.String(), Reason: "must NOT have fewer than 2 characters"}
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return &ValidationError{Field: field.String(), Reason: "must NOT have more than 50 characters"}
	}
	return nil
}

func validateKey(field Field, v string) error {
	if v == "" {
		return &ValidationError{Field: field.String(), Reason: "must NOT be empty"}
	}
	return nil
}
