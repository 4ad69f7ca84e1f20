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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"userprofiles/core/profile/domain"
)

var qb = queryBuilder{table: DefaultTable}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// assigns reports whether sql binds placeholder n to col, quoted or not.
func assigns(sql, col string, n int) bool {
	return strings.Contains(sql, fmt.Sprintf("%q = $%d", col, n)) ||
		strings.Contains(sql, fmt.Sprintf("%s = $%d", col, n))
}

func sameArgs(t *testing.T, got []any, want ...any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d args %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if wt, ok := want[i].(time.Time); ok {
			gt, ok := got[i].(time.Time)
			if !ok || !gt.Equal(wt) {
				t.Fatalf("arg %d = %v, want %v", i, got[i], want[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Fatalf("arg %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestListQuery_NoParameters(t *testing.T) {
	sql, args, err := qb.list().Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 0 {
		t.Fatalf("list must not bind arguments, got %v", args)
	}
	for _, frag := range []string{DefaultTable, "TO_CHAR(dateofbirth, 'YYYY-MM-DD') AS dateofbirth", "ORDER BY"} {
		if !strings.Contains(sql, frag) {
			t.Fatalf("sql %q misses %q", sql, frag)
		}
	}
}

func TestFindQuery_SingleParameter(t *testing.T) {
	tests := []struct {
		field   domain.Field
		value   string
		col     string
		wantArg any
	}{
		{field: domain.FieldPID, value: "EJohn19800502", col: colPID, wantArg: "EJohn19800502"},
		{field: domain.FieldLastName, value: "John", col: colLastName, wantArg: "John"},
		{field: domain.FieldDateOfBirth, value: "1980-05-02", col: colDateOfBirth, wantArg: mustDate(t, "1980-05-02")},
	}

	for _, tc := range tests {
		t.Run(tc.field.String(), func(t *testing.T) {
			q, err := qb.find(tc.field, tc.value)
			if err != nil {
				t.Fatal(err)
			}
			sql, args, err := q.Build(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			sameArgs(t, args, tc.wantArg)
			if !assigns(sql, tc.col, 1) {
				t.Fatalf("sql %q does not compare %s with $1", sql, tc.col)
			}
			if !strings.Contains(sql, "LIMIT 1") {
				t.Fatalf("sql %q must return a single row", sql)
			}
		})
	}
}

func TestFindQuery_ValueNeverInlined(t *testing.T) {
	evil := "x'; DROP TABLE userprofiles; --"
	q, err := qb.find(domain.FieldLastName, evil)
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := q.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sql, "DROP TABLE") {
		t.Fatalf("user input leaked into sql text: %q", sql)
	}
	sameArgs(t, args, evil)
}

func TestFindQuery_RejectsBadDate(t *testing.T) {
	if _, err := qb.find(domain.FieldDateOfBirth, "1980-5-2"); !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("error = %v, want ErrInvalidData", err)
	}
}

func TestInsertQuery_FourParameters(t *testing.T) {
	q, err := qb.insert(domain.Profile{PID: "EJohn19800502", FirstName: "Emma", LastName: "John", DateOfBirth: "1980-05-02"})
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := q.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	sameArgs(t, args, "EJohn19800502", "Emma", "John", mustDate(t, "1980-05-02"))
	for _, frag := range []string{"INSERT INTO", "$4", "RETURNING"} {
		if !strings.Contains(sql, frag) {
			t.Fatalf("sql %q misses %q", sql, frag)
		}
	}
}

func TestUpdateQuery_DeterministicShape(t *testing.T) {
	last := "Philips"
	dob := "1981-02-03"
	changes := domain.ProfileChanges{DateOfBirth: &dob, LastName: &last}

	build := func() (string, []any) {
		q, err := qb.update("EJohn19800502", changes.Assignments("EPhil19810203"))
		if err != nil {
			t.Fatal(err)
		}
		sql, args, err := q.Build(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return sql, args
	}

	sql, args := build()
	sameArgs(t, args, "EPhil19810203", "Philips", mustDate(t, "1981-02-03"), "EJohn19800502")

	for i, col := range []string{colPID, colLastName, colDateOfBirth} {
		if !assigns(sql, col, i+1) {
			t.Fatalf("sql %q does not set %s from $%d", sql, col, i+1)
		}
	}
	where := strings.Index(sql, "WHERE")
	if where < 0 || !assigns(sql[where:], colPID, 4) {
		t.Fatalf("sql %q must target the original pid with $4", sql)
	}

	again, _ := build()
	if again != sql {
		t.Fatalf("update shape is not stable:\n%s\n%s", sql, again)
	}
}

func TestUpdateQuery_RequiresAssignments(t *testing.T) {
	if _, err := qb.update("EJohn19800502", nil); err == nil {
		t.Fatal("expected an error for an empty assignment list")
	}
}
