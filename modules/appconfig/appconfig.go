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
package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"userprofiles/modules/db/postgres"
	"userprofiles/modules/db/redis"
	"userprofiles/modules/logger"
	"userprofiles/modules/middleware/ratelimit"
	"userprofiles/modules/telemetry"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	HTTP HTTPConfig

	// --- core infra ----
	Postgres postgres.PostgresConfig `envPrefix:"DB_"`
	Redis    redis.RedisConfig       `envPrefix:"REDIS_"`

	// --- middlewares ----
	RateLimit ratelimit.Config `envPrefix:"RATE_LIMIT_"`

	// --- observability ----
	Log logger.Config
	// otel keys follow their own naming conventions, no prefix here
	Otel telemetry.Config
}

type HTTPConfig struct {
	Host         string        `env:"HOST"               envDefault:"0.0.0.0"`
	Port         uint16        `env:"PORT"               envDefault:"3000"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
}

// Load reads a local .env file when present, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("appconfig: load env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("appconfig: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(c *Config) error {
	var errs []error

	if c.HTTP.Port == 0 {
		errs = append(errs, errors.New("appconfig: PORT must not be 0"))
	}
	if c.Postgres.WriteConfig.Host == "" || c.Postgres.WriteConfig.Database == "" {
		errs = append(errs, errors.New("appconfig: DB_HOST and DB_NAME are required"))
	}
	if c.Postgres.QueryTimeout <= 0 {
		errs = append(errs, errors.New("appconfig: DB_QUERY_TIMEOUT must be positive"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Env == "prod" && c.Postgres.WriteConfig.Password == "postgres" {
		errs = append(errs, errors.New("appconfig: refusing the default database password in prod"))
	}

	return errors.Join(errs...)
}
