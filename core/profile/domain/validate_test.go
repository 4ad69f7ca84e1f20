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
	"strings"
	"testing"
)

func ptr(s string) *string { return &s }

func TestNewProfileValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        NewProfile
		wantField string
	}{
		{name: "valid", in: NewProfile{FirstName: "Emma", LastName: "John", DateOfBirth: "1980-05-02"}},
		{name: "first name too short", in: NewProfile{FirstName: "E", LastName: "John", DateOfBirth: "1980-05-02"}, wantField: "firstName"},
		{name: "last name missing", in: NewProfile{FirstName: "Emma", DateOfBirth: "1980-05-02"}, wantField: "lastName"},
		{name: "date not a date", in: NewProfile{FirstName: "Emma", LastName: "John", DateOfBirth: "02/05/1980"}, wantField: "dateOfBirth"},
		{name: "impossible date", in: NewProfile{FirstName: "Emma", LastName: "John", DateOfBirth: "1980-02-30"}, wantField: "dateOfBirth"},
		{name: "last name too long", in: NewProfile{FirstName: "Emma", LastName: strings.Repeat("J", 51), DateOfBirth: "1980-05-02"}, wantField: "lastName"},
		{name: "fifty runes fit", in: NewProfile{FirstName: strings.Repeat("é", 50), LastName: "John", DateOfBirth: "1980-05-02"}},
		{name: "two multibyte runes are enough", in: NewProfile{FirstName: "Ÿé", LastName: "John", DateOfBirth: "1980-05-02"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidData) {
				t.Fatalf("error = %v, want ErrInvalidData", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.wantField {
				t.Fatalf("validation error = %v, want field %q", err, tc.wantField)
			}
		})
	}
}

func TestProfileChangesValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      ProfileChanges
		wantErr bool
	}{
		{name: "empty", in: ProfileChanges{}, wantErr: true},
		{name: "single field", in: ProfileChanges{LastName: ptr("Philips")}},
		{name: "all fields", in: ProfileChanges{FirstName: ptr("Emma"), LastName: ptr("John"), DateOfBirth: ptr("1980-05-02")}},
		{name: "short name", in: ProfileChanges{FirstName: ptr("E")}, wantErr: true},
		{name: "bad date", in: ProfileChanges{DateOfBirth: ptr("yesterday")}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidData) {
				t.Fatalf("error %v does not match ErrInvalidData", err)
			}
		})
	}
}
