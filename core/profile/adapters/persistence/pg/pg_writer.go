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
	"database/sql"

	"userprofiles/core/profile/domain"
	"userprofiles/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileWriteStore = (*PostgresProfileWriter)(nil)

type (
	// writerPool is the slice of db.ConnectionPool the writer needs.
	writerPool interface {
		Writer() db.Querier
		db.TxManager
	}

	PostgresProfileWriter struct {
		queries queryBuilder
		pool    writerPool
	}
)

func NewPostgresProfileWriter(pool writerPool, table string) *PostgresProfileWriter {
	return &PostgresProfileWriter{
		queries: queryBuilder{table: table},
		pool:    pool,
	}
}

func (w *PostgresProfileWriter) InsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	query, err := w.queries.insert(p)
	if err != nil {
		return nil, err
	}

	row, err := bob.One(ctx, w.pool.Writer(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError("insert profile", err)
	}
	created := toProfile(row)
	return &created, nil
}

// UpdateProfile runs read, merge and write in one REPEATABLE READ
// transaction. A concurrent commit to the same row between the read and the
// write fails the write with a serialization error instead of being
// silently overwritten.
func (w *PostgresProfileWriter) UpdateProfile(ctx context.Context, pid string, changes domain.ProfileChanges) (*domain.Profile, error) {
	var updated domain.Profile

	err := w.pool.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		current, err := w.findCurrent(ctx, q, pid)
		if err != nil {
			return err
		}

		next, err := current.Apply(changes)
		if err != nil {
			return err
		}

		query, err := w.queries.update(pid, changes.Assignments(next.PID))
		if err != nil {
			return err
		}

		row, err := bob.One(ctx, q, query, scan.StructMapper[ProfileRow]())
		if err != nil {
			return err
		}
		updated = toProfile(row)
		return nil
	}, db.WithIsolation(sql.LevelRepeatableRead))
	if err != nil {
		return nil, wrapProfileError("update profile", err)
	}

	return &updated, nil
}

func (w *PostgresProfileWriter) findCurrent(ctx context.Context, q db.Querier, pid string) (domain.Profile, error) {
	query, err := w.queries.find(domain.FieldPID, pid)
	if err != nil {
		return domain.Profile{}, err
	}
	row, err := bob.One(ctx, q, query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return domain.Profile{}, err
	}
	return toProfile(row), nil
}
