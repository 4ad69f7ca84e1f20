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

// Command seed bulk loads profiles from a JSON file through the same domain
// application the service runs. Profiles that already exist are skipped.
//
//	seed -file seed.json -concurrency 4
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"userprofiles/core/profile/adapters/persistence/pg"
	"userprofiles/core/profile/domain"
	"userprofiles/modules/appconfig"
	"userprofiles/modules/db/postgres"
	"userprofiles/modules/logger"
	"userprofiles/worker"
)

type record struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

type stats struct {
	created    atomic.Int64
	duplicates atomic.Int64
}

func main() {
	file := flag.String("file", "seed.json", "JSON array of profiles to insert")
	concurrency := flag.Int("concurrency", 4, "number of concurrent inserts")
	flag.Parse()

	if err := run(*file, *concurrency); err != nil {
		slog.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(file string, concurrency int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	log, flush, err := logger.Init(cfg.Log, cfg.Env)
	if err != nil {
		return err
	}
	defer flush()
	slog.SetDefault(log)

	records, err := readRecords(file)
	if err != nil {
		return err
	}

	pool, err := postgres.New(ctx, &cfg.Postgres, postgres.PostgresOptions{
		WriterOptions: []postgres.PgxConfigOption{postgres.WithConnectTimeout(5 * time.Second)},
	})
	if err != nil {
		return err
	}
	defer func() { _ = pool.Shutdown(context.WithoutCancel(ctx)) }()

	if cfg.Postgres.AutoMigrate {
		if err := pool.MigrateUp(); err != nil {
			return err
		}
	}

	app := domain.NewApp(
		pg.NewPostgresProfileReader(pool, pg.DefaultTable),
		pg.NewPostgresProfileWriter(pool, pg.DefaultTable),
		domain.WithQueryTimeout(cfg.Postgres.QueryTimeout),
	)

	var st stats
	err = seed(ctx, app, records, concurrency, &st)
	slog.InfoContext(ctx, "seed finished",
		slog.Int("records", len(records)),
		slog.Int64("created", st.created.Load()),
		slog.Int64("duplicates", st.duplicates.Load()),
	)
	return err
}

func readRecords(file string) ([]record, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeRecords(f)
}

func decodeRecords(r io.Reader) ([]record, error) {
	var records []record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return records, nil
}

// seed inserts every record. Duplicates are counted, anything else fails the run.
func seed(ctx context.Context, app *domain.Application, records []record, concurrency int, st *stats) error {
	jobs := make(chan record)
	go func() {
		defer close(jobs)
		for _, rec := range records {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	return worker.BlockingPool(ctx, concurrency, jobs, func(ctx context.Context, rec record) error {
		created, err := app.CreateProfile(ctx, domain.NewProfile{
			FirstName:   rec.FirstName,
			LastName:    rec.LastName,
			DateOfBirth: rec.DateOfBirth,
		})
		switch {
		case err == nil:
			st.created.Add(1)
			slog.DebugContext(ctx, "seeded profile", slog.String("pid", created.PID))
			return nil
		case errors.Is(err, domain.ErrDuplicateProfile):
			st.duplicates.Add(1)
			slog.WarnContext(ctx, "profile already exists",
				slog.String("firstName", rec.FirstName),
				slog.String("lastName", rec.LastName),
				slog.String("dateOfBirth", rec.DateOfBirth),
			)
			return nil
		}
		return fmt.Errorf("seed %s %s %s: %w", rec.FirstName, rec.LastName, rec.DateOfBirth, err)
	})
}
