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

package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"userprofiles/core/profile/domain"
	"userprofiles/internal/memory"
)

var (
	emma  = domain.Profile{PID: "EJohn19800502", FirstName: "Emma", LastName: "John", DateOfBirth: "1980-05-02"}
	lekha = domain.Profile{PID: "LDona20000609", FirstName: "Lekha", LastName: "Donald", DateOfBirth: "2000-06-09"}
)

func newApp(seed ...domain.Profile) (*domain.Application, *memory.Store) {
	store := memory.New(seed...)
	return domain.NewApp(store, store, domain.WithQueryTimeout(time.Second)), store
}

func strPtr(s string) *string { return &s }

func TestCreateProfile_DerivesPID(t *testing.T) {
	app, _ := newApp()

	got, err := app.CreateProfile(context.Background(), domain.NewProfile{
		FirstName: "Emma", LastName: "John", DateOfBirth: "1980-05-02",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != emma {
		t.Fatalf("created = %+v, want %+v", *got, emma)
	}
}

func TestCreateProfile_DuplicateIsConflict(t *testing.T) {
	app, _ := newApp()
	in := domain.NewProfile{FirstName: "Emma", LastName: "John", DateOfBirth: "1980-05-02"}

	if _, err := app.CreateProfile(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := app.CreateProfile(context.Background(), in)
	if !errors.Is(err, domain.ErrDuplicateProfile) {
		t.Fatalf("second create error = %v, want ErrDuplicateProfile", err)
	}
}

func TestCreateProfile_InvalidNeverReachesStore(t *testing.T) {
	app, store := newApp()

	_, err := app.CreateProfile(context.Background(), domain.NewProfile{
		FirstName: "E", LastName: "John", DateOfBirth: "1980-05-02",
	})
	if !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("error = %v, want ErrInvalidData", err)
	}
	if store.Calls() != 0 {
		t.Fatalf("store called %d times, want 0", store.Calls())
	}
}

func TestGetProfile_Lookups(t *testing.T) {
	app, _ := newApp(emma, lekha)
	ctx := context.Background()

	byID, err := app.GetProfileByID(ctx, "LDona20000609")
	if err != nil || *byID != lekha {
		t.Fatalf("GetProfileByID = %+v, %v", byID, err)
	}
	byLast, err := app.GetProfileByLastName(ctx, "John")
	if err != nil || *byLast != emma {
		t.Fatalf("GetProfileByLastName = %+v, %v", byLast, err)
	}
	byDob, err := app.GetProfileByDateOfBirth(ctx, "2000-06-09")
	if err != nil || *byDob != lekha {
		t.Fatalf("GetProfileByDateOfBirth = %+v, %v", byDob, err)
	}

	if _, err := app.GetProfileByID(ctx, "Nope"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("missing pid error = %v, want ErrProfileNotFound", err)
	}
	if _, err := app.GetProfileByDateOfBirth(ctx, "not-a-date"); !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("bad dob error = %v, want ErrInvalidData", err)
	}
}

func TestGetProfile_FirstMatchOnly(t *testing.T) {
	other := domain.Profile{PID: "AJohn19700101", FirstName: "Adam", LastName: "John", DateOfBirth: "1970-01-01"}
	app, _ := newApp(emma, other)

	got, err := app.GetProfileByLastName(context.Background(), "John")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PID != other.PID {
		t.Fatalf("pid = %q, want the lowest pid %q", got.PID, other.PID)
	}
}

func TestListProfiles(t *testing.T) {
	app, _ := newApp()
	got, err := app.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("empty store should list an empty, non-nil slice, got %#v", got)
	}

	app, _ = newApp(lekha, emma)
	got, err = app.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != emma || got[1] != lekha {
		t.Fatalf("ListProfiles = %+v", got)
	}
}

func TestUpdateProfile_RecomputesPID(t *testing.T) {
	app, _ := newApp(emma, lekha)
	ctx := context.Background()

	updated, err := app.UpdateProfile(ctx, "EJohn19800502", domain.ProfileChanges{LastName: strPtr("Philips")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PID != "EPhil19800502" {
		t.Fatalf("pid = %q, want EPhil19800502", updated.PID)
	}

	if _, err := app.GetProfileByID(ctx, "EJohn19800502"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("old pid lookup error = %v, want ErrProfileNotFound", err)
	}
	got, err := app.GetProfileByLastName(ctx, "Philips")
	if err != nil || got.PID != "EPhil19800502" {
		t.Fatalf("GetProfileByLastName(Philips) = %+v, %v", got, err)
	}
}

func TestUpdateProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pid     string
		changes domain.ProfileChanges
		want    error
	}{
		{name: "unknown pid", pid: "XNope19990101", changes: domain.ProfileChanges{FirstName: strPtr("Xavier")}, want: domain.ErrProfileNotFound},
		{name: "collides with existing", pid: "EJohn19800502", changes: domain.ProfileChanges{FirstName: strPtr("Lekha"), LastName: strPtr("Donald"), DateOfBirth: strPtr("2000-06-09")}, want: domain.ErrDuplicateProfile},
		{name: "no fields", pid: "EJohn19800502", changes: domain.ProfileChanges{}, want: domain.ErrInvalidData},
		{name: "invalid date", pid: "EJohn19800502", changes: domain.ProfileChanges{DateOfBirth: strPtr("1980-13-01")}, want: domain.ErrInvalidData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newApp(emma, lekha)
			_, err := app.UpdateProfile(context.Background(), tc.pid, tc.changes)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStoreFailureKeepsDetails(t *testing.T) {
	app, store := newApp(emma)
	store.FailWith(errors.New("connection refused"))

	_, err := app.ListProfiles(context.Background())
	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("error = %v, want ErrStoreFailure", err)
	}
	var se *domain.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a *StoreError", err)
	}
	if se.Err.Error() != "connection refused" {
		t.Fatalf("details = %q, want the underlying error text", se.Err.Error())
	}
}
