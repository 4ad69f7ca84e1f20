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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"userprofiles/modules/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
)

var _ db.ConnectionPool = (*PostgresConnectionPool)(nil)

type PostgresConnectionPool struct {
	writer bob.DB

	readers []bob.DB
	mu      sync.Mutex

	// kept for migrations, which open their own connection
	primary PoolConfig
}

// HealthCheck implements db.ConnectionPool.
func (p *PostgresConnectionPool) HealthCheck(ctx context.Context) error {
	_, err := p.writer.ExecContext(ctx, "SELECT 1")
	return err
}

// MigrateUp implements db.ConnectionPool.
func (p *PostgresConnectionPool) MigrateUp() error {
	return Migrate(&p.primary)
}

// MigrateDown implements db.ConnectionPool.
func (p *PostgresConnectionPool) MigrateDown() error {
	return Rollback(&p.primary)
}

// Reader implements db.ConnectionPool.
//
// Replicas are picked uniformly at random. Health-aware selection or
// read-your-write routing can come later if profiling asks for it.
func (p *PostgresConnectionPool) Reader() db.Querier {
	if len(p.readers) == 0 {
		return p.Writer()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.readers[rand.IntN(len(p.readers))]
}

// Writer implements db.ConnectionPool.
func (p *PostgresConnectionPool) Writer() db.Querier {
	return p.writer
}

// WithTimeoutTx implements db.ConnectionPool.
func (p *PostgresConnectionPool) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn db.TxFn, opts ...db.TxOption) error {
	ctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return p.WithTx(ctx, fn, opts...)
}

// WithTx implements db.ConnectionPool. Transactions always run on the primary.
func (p *PostgresConnectionPool) WithTx(ctx context.Context, fn db.TxFn, opts ...db.TxOption) error {
	return p.writer.RunInTx(ctx, db.BuildTxOptions(opts...), func(ctx context.Context, exec bob.Executor) error {
		// exec implements bob.Executor, which satisfies our db.Querier
		return fn(ctx, exec)
	})
}

// Shutdown implements db.ConnectionPool.
func (p *PostgresConnectionPool) Shutdown(_ context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error

	if err := p.writer.Close(); err != nil {
		errs = append(errs, err)
	}

	for _, reader := range p.readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	// single, flat join
	return errors.Join(errs...)
}

func New(
	ctx context.Context,
	config *PostgresConfig,
	opts PostgresOptions,
) (*PostgresConnectionPool, error) {
	writer, err := initDBFromConfig(ctx, &config.WriteConfig, opts.WriterOptions...)
	if err != nil {
		return nil, fmt.Errorf("postgres primary %s: %w", config.WriteConfig.Redacted(), err)
	}

	readers := make([]bob.DB, 0, len(config.ReadConfigs))
	for i := range config.ReadConfigs {
		r := &config.ReadConfigs[i]
		reader, err := initDBFromConfig(ctx, r, opts.ReaderOptions...)
		if err != nil {
			// close what was opened so far
			_ = writer.Close()
			for _, opened := range readers {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("postgres replica %s: %w", r.Redacted(), err)
		}
		readers = append(readers, reader)
	}

	slog.InfoContext(ctx, "postgres pool ready",
		slog.String("primary", config.WriteConfig.Redacted()),
		slog.Int("replicas", len(readers)),
	)

	return &PostgresConnectionPool{
		writer:  writer,
		readers: readers,
		primary: config.WriteConfig,
	}, nil
}

func initDBFromConfig(
	ctx context.Context,
	config *PoolConfig,
	opts ...PgxConfigOption,
) (bob.DB, error) {
	poolConfig, err := pgxpool.ParseConfig(connString(config))
	if err != nil {
		return bob.DB{}, err
	}

	for _, opt := range opts {
		if opt != nil {
			opt(poolConfig)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return bob.DB{}, err
	}
	return bob.NewDB(stdlib.OpenDBFromPool(pool)), nil
}
