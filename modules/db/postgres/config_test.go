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
	"strings"
	"testing"
)

func TestPoolConfigURL(t *testing.T) {
	cfg := PoolConfig{
		Host:         "db.internal",
		Port:         6432,
		User:         "app",
		Password:     "p@ss word",
		Database:     "profiles",
		SSLMode:      "require",
		PoolMaxConns: 12,
	}

	u := cfg.URL()
	if u.Scheme != "postgres" || u.Host != "db.internal:6432" || u.Path != "/profiles" {
		t.Fatalf("unexpected url %s", u)
	}
	if pw, _ := u.User.Password(); pw != "p@ss word" {
		t.Fatalf("password not preserved: %q", pw)
	}
	if got := u.Query().Get("sslmode"); got != "require" {
		t.Fatalf("sslmode = %q", got)
	}
	if u.Query().Has("pool_max_conns") {
		t.Fatalf("migration url must not carry pgxpool settings: %s", u)
	}

	cs := connString(&cfg)
	if !strings.Contains(cs, "pool_max_conns=12") {
		t.Fatalf("conn string %q misses pool_max_conns", cs)
	}
}

func TestPoolConfigRedactedHidesPassword(t *testing.T) {
	cfg := PoolConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Database: "postgres"}
	if strings.Contains(cfg.Redacted(), "secret") {
		t.Fatalf("redacted form leaks password: %s", cfg.Redacted())
	}
}
