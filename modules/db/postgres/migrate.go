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

package postgres

import (
	"embed"
	"io"
	"log/slog"
	"time"

	"github.com/amacneil/dbmate/v2/pkg/dbmate"
	_ "github.com/amacneil/dbmate/v2/pkg/driver/postgres"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func newMigrator(cfg *PoolConfig) *dbmate.DB {
	m := dbmate.New(cfg.URL())
	m.FS = migrationsFS
	m.MigrationsDir = []string{migrationsDir}
	m.AutoDumpSchema = false
	m.WaitBefore = true
	m.WaitTimeout = 30 * time.Second
	m.Log = slogWriter{}
	return m
}

// Migrate creates the database if needed and applies every pending embedded migration.
func Migrate(cfg *PoolConfig) error {
	return newMigrator(cfg).CreateAndMigrate()
}

// Rollback reverts the most recent migration.
func Rollback(cfg *PoolConfig) error {
	return newMigrator(cfg).Rollback()
}

// slogWriter forwards dbmate progress output to the process logger.
type slogWriter struct{}

var _ io.Writer = slogWriter{}

func (slogWriter) Write(p []byte) (int, error) {
	slog.Info("dbmate", slog.String("output", string(trimNewline(p))))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
