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

package pg

import (
	"database/sql"
	"errors"

	"userprofiles/core/profile/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultTable is the table created by the embedded migrations.
const DefaultTable = "userprofiles"

// Unquoted identifiers in the DDL fold to lower case.
const (
	colPID         = "pid"
	colFirstName   = "firstname"
	colLastName    = "lastname"
	colDateOfBirth = "dateofbirth"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgStringTooLong        = "22001"
)

// ProfileRow is the persistence entity shape used by storage adapters.
// DateOfBirth is rendered by the query as YYYY-MM-DD.
type ProfileRow struct {
	PID         string `db:"pid"`
	FirstName   string `db:"firstname"`
	LastName    string `db:"lastname"`
	DateOfBirth string `db:"dateofbirth"`
}

func toProfile(row ProfileRow) domain.Profile {
	return domain.Profile{
		PID:         row.PID,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		DateOfBirth: row.DateOfBirth,
	}
}

type profileTransformer struct{}

func (profileTransformer) TransformScanned(rows []ProfileRow) ([]domain.Profile, error) {
	out := make([]domain.Profile, len(rows))
	for i, r := range rows {
		out[i] = toProfile(r)
	}
	return out, nil
}

// wrapProfileError translates driver errors into the domain error contract.
func wrapProfileError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrDuplicateProfile
		case pgSerializationFailure:
			return domain.ErrConcurrentUpdate
		case pgStringTooLong:
			return &domain.ValidationError{Field: "body", Reason: "must NOT have more than 50 characters"}
		}
	}

	// already classified, e.g. returned from inside a transaction callback
	for _, known := range []error{domain.ErrProfileNotFound, domain.ErrDuplicateProfile, domain.ErrConcurrentUpdate, domain.ErrInvalidData} {
		if errors.Is(err, known) {
			return err
		}
	}

	return &domain.StoreError{Op: op, Err: err}
}
