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

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisotel"
)

// ClientOptions turns the config into rueidis options without dialing.
func ClientOptions(cfg RedisConfig) (rueidis.ClientOption, error) {
	if cfg.URL == "" {
		return rueidis.ClientOption{}, errors.New("redis: URL must not be empty")
	}
	if cfg.RequireTLS && !strings.HasPrefix(cfg.URL, "rediss://") {
		return rueidis.ClientOption{}, errors.New("redis: REQUIRE_TLS is set but the URL is not rediss://")
	}

	opt, err := rueidis.ParseURL(cfg.URL)
	if err != nil {
		return rueidis.ClientOption{}, fmt.Errorf("redis: parse url: %w", err)
	}

	opt.ClientName = cfg.ClientName
	opt.DisableRetry = cfg.DisableRetry
	if cfg.ConnWriteTimeout > 0 {
		opt.ConnWriteTimeout = cfg.ConnWriteTimeout
	}

	if cfg.SkipTLSVerify && opt.TLSConfig != nil {
		tc := opt.TLSConfig.Clone()
		tc.InsecureSkipVerify = true //nolint:gosec
		opt.TLSConfig = tc
	} else if cfg.SkipTLSVerify {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return opt, nil
}

// NewRueidisClient dials Redis and fails fast when PING does not answer.
func NewRueidisClient(ctx context.Context, cfg RedisConfig) (rueidis.Client, error) {
	opt, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	var cli rueidis.Client
	if cfg.EnableOtel {
		cli, err = rueidisotel.NewClient(opt)
	} else {
		cli, err = rueidis.NewClient(opt)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: new client: %w", err)
	}

	pingCtx := ctx
	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}
	if err := cli.Do(pingCtx, cli.B().Ping().Build()).Error(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	slog.InfoContext(ctx, "redis connected",
		slog.String("mode", string(cli.Mode())),
		slog.String("client_name", cfg.ClientName),
		slog.Bool("otel", cfg.EnableOtel),
	)
	return cli, nil
}
