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
	"errors"
	"fmt"
	"time"

	"userprofiles/core/profile/domain"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

// profileColumns is the projection every statement returns, in ProfileRow shape.
var profileColumns = []any{
	colPID,
	colFirstName,
	colLastName,
	"TO_CHAR(" + colDateOfBirth + ", 'YYYY-MM-DD') AS " + colDateOfBirth,
}

// queryBuilder assembles parameterized statements against one table. User
// supplied values only ever travel as bound arguments.
type queryBuilder struct {
	table string
}

func (b queryBuilder) list() bob.BaseQuery[*dialect.SelectQuery] {
	return psql.Select(
		sm.Columns(profileColumns...),
		sm.From(b.table),
		sm.OrderBy(colPID),
	)
}

// find selects the first row, in pid order, whose field equals value.
func (b queryBuilder) find(field domain.Field, value string) (bob.BaseQuery[*dialect.SelectQuery], error) {
	col, arg, err := bindField(field, value)
	if err != nil {
		return bob.BaseQuery[*dialect.SelectQuery]{}, err
	}

	return psql.Select(
		sm.Columns(profileColumns...),
		sm.From(b.table),
		sm.Where(psql.Quote(col).EQ(psql.Arg(arg))),
		sm.OrderBy(colPID),
		sm.Limit(1),
	), nil
}

func (b queryBuilder) insert(p domain.Profile) (bob.BaseQuery[*dialect.InsertQuery], error) {
	dob, err := parseDate(p.DateOfBirth)
	if err != nil {
		return bob.BaseQuery[*dialect.InsertQuery]{}, err
	}

	return psql.Insert(
		im.Into(b.table, colPID, colFirstName, colLastName, colDateOfBirth),
		im.Values(
			psql.Arg(p.PID),
			psql.Arg(p.FirstName),
			psql.Arg(p.LastName),
			psql.Arg(dob),
		),
		im.Returning(profileColumns...),
	), nil
}

// update writes the assignments in the given order and targets the row by
// its current pid, which is always the last bound argument.
func (b queryBuilder) update(pid string, assignments []domain.Assignment) (bob.BaseQuery[*dialect.UpdateQuery], error) {
	if len(assignments) == 0 {
		return bob.BaseQuery[*dialect.UpdateQuery]{}, errors.New("pg: update without assignments")
	}

	query := psql.Update(um.Table(b.table))
	for _, a := range assignments {
		col, arg, err := bindField(a.Field, a.Value)
		if err != nil {
			return bob.BaseQuery[*dialect.UpdateQuery]{}, err
		}
		query.Apply(um.SetCol(col).To(psql.Arg(arg)))
	}

	query.Apply(
		um.Where(psql.Quote(colPID).EQ(psql.Arg(pid))),
		um.Returning(profileColumns...),
	)
	return query, nil
}

// bindField maps a domain field to its column and bound value.
func bindField(f domain.Field, v string) (string, any, error) {
	switch f {
	case domain.FieldPID:
		return colPID, v, nil
	case domain.FieldFirstName:
		return colFirstName, v, nil
	case domain.FieldLastName:
		return colLastName, v, nil
	case domain.FieldDateOfBirth:
		d, err := parseDate(v)
		return colDateOfBirth, d, err
	}
	return "", nil, fmt.Errorf("%w: unknown field %d", domain.ErrInvalidData, int(f))
}

// parseDate binds dates as UTC midnight so they land on the same calendar
// day in a timestamp without time zone column.
func parseDate(v string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: domain.FieldDateOfBirth.String(), Reason: `must match format "date"`}
	}
	return d, nil
}
