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

package rest

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"userprofiles/core/profile/domain"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
)

type (
	ProfileResponse struct {
		PID         string `json:"pid"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		DateOfBirth string `json:"dateOfBirth"`
	}

	// CreateProfileRequest is the body of POST /profile. Every field is required.
	CreateProfileRequest struct {
		FirstName   *string     `json:"firstName"`
		LastName    *string     `json:"lastName"`
		DateOfBirth *types.Date `json:"dateOfBirth"`
	}

	// UpdateProfileRequest is the body of PATCH /profile/{pid}. Absent fields
	// are kept, explicit nulls are rejected.
	UpdateProfileRequest struct {
		FirstName   nullable.Nullable[string]     `json:"firstName"`
		LastName    nullable.Nullable[string]     `json:"lastName"`
		DateOfBirth nullable.Nullable[types.Date] `json:"dateOfBirth"`
	}
)

func toResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		PID:         p.PID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
	}
}

func toResponses(profiles []domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toResponse(p))
	}
	return out
}

func (r CreateProfileRequest) toDomain() (domain.NewProfile, error) {
	err := errors.Join(
		required(domain.FieldFirstName, r.FirstName == nil),
		required(domain.FieldLastName, r.LastName == nil),
		required(domain.FieldDateOfBirth, r.DateOfBirth == nil),
	)
	if err != nil {
		return domain.NewProfile{}, err
	}
	return domain.NewProfile{
		FirstName:   *r.FirstName,
		LastName:    *r.LastName,
		DateOfBirth: r.DateOfBirth.Format(types.DateFormat),
	}, nil
}

func (r UpdateProfileRequest) toDomain() (domain.ProfileChanges, error) {
	var (
		changes domain.ProfileChanges
		errs    []error
	)

	if v, err := optional(domain.FieldFirstName, r.FirstName); err != nil {
		errs = append(errs, err)
	} else {
		changes.FirstName = v
	}
	if v, err := optional(domain.FieldLastName, r.LastName); err != nil {
		errs = append(errs, err)
	} else {
		changes.LastName = v
	}
	if d, err := optional(domain.FieldDateOfBirth, r.DateOfBirth); err != nil {
		errs = append(errs, err)
	} else if d != nil {
		s := d.Format(types.DateFormat)
		changes.DateOfBirth = &s
	}

	return changes, errors.Join(errs...)
}

func required(field domain.Field, missing bool) error {
	if !missing {
		return nil
	}
	return &domain.ValidationError{Field: "body", Reason: "must have required property '" + field.String() + "'"}
}

// optional returns nil for an absent field and rejects an explicit null.
func optional[T any](field domain.Field, v nullable.Nullable[T]) (*T, error) {
	if !v.IsSpecified() {
		return nil, nil
	}
	if v.IsNull() {
		return nil, &domain.ValidationError{Field: field.String(), Reason: "must NOT be null"}
	}
	got, err := v.Get()
	if err != nil {
		return nil, &domain.ValidationError{Field: field.String(), Reason: "invalid value"}
	}
	return &got, nil
}

// decodeError turns a body decoding failure into a validation error.
func decodeError(err error) error {
	var (
		parseErr *time.ParseError
		typeErr  *json.UnmarshalTypeError
		syntax   *json.SyntaxError
	)
	switch {
	case errors.As(err, &parseErr):
		return &domain.ValidationError{Field: domain.FieldDateOfBirth.String(), Reason: `must match format "date"`}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &domain.ValidationError{Field: typeErr.Field, Reason: "must be " + typeErr.Type.String()}
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return &domain.ValidationError{Field: "body", Reason: "must be valid JSON"}
	case errors.Is(err, io.EOF):
		return &domain.ValidationError{Field: "body", Reason: "must be object"}
	}

	// encoding/json has no typed error for unknown fields
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return &domain.ValidationError{Field: strings.Trim(name, `"`), Reason: "must NOT have additional properties"}
	}
	return &domain.ValidationError{Field: "body", Reason: "must be object"}
}
