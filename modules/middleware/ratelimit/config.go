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

package ratelimit

import (
	"errors"
	"fmt"
	"net/netip"
	"time"
)

type (
	KeyStrategyId string
	Backend       string
)

const (
	RemoteIpKeyStrategy KeyStrategyId = "remote_ip"

	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

type (
	// Config is read with the RATE_LIMIT_ prefix, e.g.
	//
	//	RATE_LIMIT_ENABLED=true
	//	RATE_LIMIT_DEFAULT_LIMIT=100
	//	RATE_LIMIT_DEFAULT_WINDOW=1m
	//	RATE_LIMIT_DEFAULT_KEY_STRATEGY=remote_ip
	//	RATE_LIMIT_ROUTE_0_PATTERN=/profile
	//	RATE_LIMIT_ROUTE_0_POLICY_0_METHOD=POST
	//	RATE_LIMIT_ROUTE_0_POLICY_0_LIMIT=10
	//	RATE_LIMIT_ROUTE_0_POLICY_0_WINDOW=1m
	//	RATE_LIMIT_ROUTE_0_POLICY_0_KEY_STRATEGY=remote_ip
	//	RATE_LIMIT_TRUSTED_PROXIES=10.0.0.0/8,192.168.0.0/16
	Config struct {
		Enabled bool    `env:"ENABLED" envDefault:"false"`
		Backend Backend `env:"BACKEND" envDefault:"memory"`

		// X-Forwarded-For is only read from peers inside these ranges.
		TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`

		RestHTTPConfig
	}

	RestHTTPConfig struct {
		Routes              []Route      `envPrefix:"ROUTE_"`
		DefaultPolicy       EndpointRule `envPrefix:"DEFAULT_"`
		AllowIfNoMatch      bool         `env:"ALLOW_IF_NO_MATCH" envDefault:"true"`
		AllowIfNoIdentifier bool         `env:"ALLOW_IF_NO_ID"`
	}

	// Route patterns are ServeMux patterns without the method, e.g.
	// /profileById/{pid}.
	Route struct {
		Pattern       string         `env:"PATTERN"`
		EndpointRules []EndpointRule `envPrefix:"POLICY_"`
	}

	EndpointRule struct {
		Method      string        `env:"METHOD"`
		Limit       int64         `env:"LIMIT" envDefault:"10000"`
		Window      time.Duration `env:"WINDOW"`
		KeyStrategy KeyStrategyId `env:"KEY_STRATEGY"`
	}
)

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("ratelimit: unknown backend %q", c.Backend))
	}
	for i, r := range c.Routes {
		if r.Pattern == "" {
			errs = append(errs, fmt.Errorf("ratelimit: route %d has no pattern", i))
		}
		for j, rule := range r.EndpointRules {
			if rule.Window <= 0 || rule.Limit <= 0 {
				errs = append(errs, fmt.Errorf("ratelimit: route %d policy %d needs a positive limit and window", i, j))
			}
		}
	}
	if len(c.Routes) == 0 && c.DefaultPolicy.Window <= 0 {
		errs = append(errs, errors.New("ratelimit: enabled without any route or default policy"))
	}
	return errors.Join(errs...)
}
