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

import "time"

type (
	Application struct {
		reader ProfileReadStore
		writer ProfileWriteStore

		// upper bound for a single store call, zero disables it
		queryTimeout time.Duration
	}

	// Profile is the domain model used by the application layer.
	//
	// DateOfBirth is always a calendar date in YYYY-MM-DD form and PID is
	// always DerivePID(FirstName, LastName, DateOfBirth).
	Profile struct {
		PID         string
		FirstName   string
		LastName    string
		DateOfBirth string
	}

	// NewProfile holds the user supplied fields of a profile to be created.
	NewProfile struct {
		FirstName   string
		LastName    string
		DateOfBirth string
	}

	// ProfileChanges is a partial update, nil fields are left untouched.
	ProfileChanges struct {
		FirstName   *string
		LastName    *string
		DateOfBirth *string
	}

	// Field enumerates the persisted profile attributes in schema order.
	Field int

	// Assignment is a single field write of an update.
	Assignment struct {
		Field Field
		Value string
	}
)

const (
	FieldPID Field = iota
	FieldFirstName
	FieldLastName
	FieldDateOfBirth
)

func (f Field) String() string {
	switch f {
	case FieldPID:
		return "pid"
	case FieldFirstName:
		return "firstName"
	case FieldLastName:
		return "lastName"
	case FieldDateOfBirth:
		return "dateOfBirth"
	default:
		return "unknown"
	}
}

// IsEmpty reports whether no field is set.
func (c ProfileChanges) IsEmpty() bool {
	return c.FirstName == nil && c.LastName == nil && c.DateOfBirth == nil
}

// Apply merges the changes into p and recomputes the pid from the merged fields.
func (p Profile) Apply(c ProfileChanges) (Profile, error) {
	next := p
	if c.FirstName != nil {
		next.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		next.LastName = *c.LastName
	}
	if c.DateOfBirth != nil {
		next.DateOfBirth = *c.DateOfBirth
	}

	pid, err := DerivePID(next.FirstName, next.LastName, next.DateOfBirth)
	if err != nil {
		return Profile{}, err
	}
	next.PID = pid
	return next, nil
}

// Assignments lists the writes of an update in schema order. The pid comes
// first and is always present, followed by the fields set in c.
func (c ProfileChanges) Assignments(pid string) []Assignment {
	out := make([]Assignment, 0, 4)
	out = append(out, Assignment{Field: FieldPID, Value: pid})
	if c.FirstName != nil {
		out = append(out, Assignment{Field: FieldFirstName, Value: *c.FirstName})
	}
	if c.LastName != nil {
		out = append(out, Assignment{Field: FieldLastName, Value: *c.LastName})
	}
	if c.DateOfBirth != nil {
		out = append(out, Assignment{Field: FieldDateOfBirth, Value: *c.DateOfBirth})
	}
	return out
}
