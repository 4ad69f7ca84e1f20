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

	"userprofiles/core/profile/domain"
	"userprofiles/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/scan"
)

var _ domain.ProfileReadStore = (*PostgresProfileReader)(nil)

type PostgresProfileReader struct {
	queries queryBuilder
	pool    db.ReaderConnectionManager // calls Reader() at runtime
}

func NewPostgresProfileReader(pool db.ReaderConnectionManager, table string) *PostgresProfileReader {
	return &PostgresProfileReader{
		queries: queryBuilder{table: table},
		pool:    pool,
	}
}

func (r *PostgresProfileReader) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := bob.Allx[profileTransformer](ctx, r.pool.Reader(), r.queries.list(), scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError("list profiles", err)
	}
	return profiles, nil
}

func (r *PostgresProfileReader) FindProfile(ctx context.Context, field domain.Field, value string) (*domain.Profile, error) {
	query, err := r.queries.find(field, value)
	if err != nil {
		return nil, err
	}

	row, err := bob.One(ctx, r.pool.Reader(), query, scan.StructMapper[ProfileRow]())
	if err != nil {
		return nil, wrapProfileError("find profile", err)
	}
	prof := toProfile(row)
	return &prof, nil
}
