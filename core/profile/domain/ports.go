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

import "context"

// Store implementations translate their vendor errors before returning:
//   - no matching row: ErrProfileNotFound
//   - pid uniqueness violation: ErrDuplicateProfile
//   - serialization failure: ErrConcurrentUpdate
//   - anything else: *StoreError
type (
	ProfileReadStore interface {
		// ListProfiles returns every stored profile ordered by pid.
		ListProfiles(ctx context.Context) ([]Profile, error)

		// FindProfile returns the first profile, in pid order, whose field
		// equals value. Lookups on non unique fields (last name, date of
		// birth) never return more than one profile.
		//
		// Returns ErrProfileNotFound when nothing matches.
		FindProfile(ctx context.Context, field Field, value string) (*Profile, error)
	}

	ProfileWriteStore interface {
		// InsertProfile stores p as is. The pid must already be derived.
		//
		// Returns ErrDuplicateProfile if a profile with the same pid exists.
		InsertProfile(ctx context.Context, p Profile) (*Profile, error)

		// UpdateProfile reads the profile identified by pid, merges changes
		// into it, recomputes the pid from the merged fields and writes the
		// result back, all within a single transaction.
		//
		// Returns:
		//   - the updated profile
		//   - ErrProfileNotFound if no profile has the given pid
		//   - ErrDuplicateProfile if the recomputed pid belongs to another profile
		//   - ErrConcurrentUpdate if the row changed between read and write
		UpdateProfile(ctx context.Context, pid string, changes ProfileChanges) (*Profile, error)
	}
)
