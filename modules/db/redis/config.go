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
package redis

import "time"

// RedisConfig is read with the REDIS_ prefix. URL is a standard Redis URI:
//
//   - Single:  redis://:password@localhost:6379/0
//   - TLS:     rediss://:password@my-redis.example.com:6379/0
//   - Cluster: redis://:password@host1:6379/0?addr=host2:6379&addr=host3:6379
type RedisConfig struct {
	URL        string `env:"URL"         envDefault:"redis://localhost:6379/0"`
	ClientName string `env:"CLIENT_NAME" envDefault:"userprofiles"`

	// Only for trusted networks with self signed certificates.
	SkipTLSVerify bool `env:"SKIP_TLS_VERIFY"`
	RequireTLS    bool `env:"REQUIRE_TLS"`

	// Zero keeps the rueidis default.
	ConnWriteTimeout time.Duration `env:"CONN_WRITE_TIMEOUT"`
	DisableRetry     bool          `env:"DISABLE_RETRY"`
	PingTimeout      time.Duration `env:"PING_TIMEOUT" envDefault:"5s"`

	// Wraps the client with rueidisotel.
	EnableOtel bool `env:"ENABLE_OTEL"`

	// Prefix for every counter key written by the rate limiter.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"userprofiles:ratelimit"`
}
