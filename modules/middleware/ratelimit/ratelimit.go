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
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"userprofiles/modules/middleware/problem"
	rl "userprofiles/modules/ratelimit"
)

type (
	Pattern string
	method  string

	// KeyFunc extracts the caller identity from a request.
	KeyFunc func(*http.Request) rl.Key

	// RouteInfoFunc resolves the registered route a request will hit.
	RouteInfoFunc func(*http.Request) RouteInfo

	RouteInfo struct {
		// ID is the matched route pattern, empty when nothing matches.
		ID     Pattern
		Method string
		Path   string
	}

	Policy struct {
		Limiter rl.RateLimiter
		KeyFn   KeyFunc
	}

	// RuntimePolicy is the compiled form of RestHTTPConfig.
	RuntimePolicy struct {
		policyMap map[Pattern]map[method]Policy

		// A method specific default wins over the catch-all default.
		defaultPolicyByMethod map[method]Policy
		defaultPolicy         *Policy

		// Let requests through when no policy applies to the route.
		AllowIfNoMatch bool
		// Let requests through when KeyFn yields no identity.
		AllowIfNoIdentifier bool

		RouteInfoFn RouteInfoFunc
	}
)

type policySource string

const (
	policySourceExplicit      policySource = "explicit"
	policySourceDefaultMethod policySource = "default_method"
	policySourceDefaultAll    policySource = "default"
)

// KeyStrategies lists the strategies a config may name.
func KeyStrategies(trustedProxies []netip.Prefix) map[KeyStrategyId]KeyFunc {
	return map[KeyStrategyId]KeyFunc{
		RemoteIpKeyStrategy: RemoteIpKeyFunc(trustedProxies),
	}
}

func normalizeMethod(m string) method {
	return method(strings.ToUpper(m))
}

func (p *RuntimePolicy) findPolicy(ri RouteInfo) (Policy, bool, policySource) {
	if pm, ok := p.policyMap[ri.ID]; ok {
		if px, ok := pm[normalizeMethod(ri.Method)]; ok {
			return px, true, policySourceExplicit
		}
	}
	if px, ok := p.defaultPolicyByMethod[normalizeMethod(ri.Method)]; ok {
		return px, true, policySourceDefaultMethod
	}
	if p.defaultPolicy != nil {
		return *p.defaultPolicy, true, policySourceDefaultAll
	}
	return Policy{}, false, ""
}

// ParsePolicy builds one limiter per configured route and method. Route
// patterns must match the patterns registered on the mux.
func ParsePolicy(
	factory rl.LimiterFactory,
	cfg *RestHTTPConfig,
	routeFn RouteInfoFunc,
	keyStrategies map[KeyStrategyId]KeyFunc,
) (*RuntimePolicy, error) {
	rtp := &RuntimePolicy{
		policyMap:           make(map[Pattern]map[method]Policy),
		AllowIfNoIdentifier: cfg.AllowIfNoIdentifier,
		AllowIfNoMatch:      cfg.AllowIfNoMatch,
		RouteInfoFn:         routeFn,
	}

	// the default only counts when it can actually be enforced
	if def := cfg.DefaultPolicy; def.Window > 0 && def.KeyStrategy != "" {
		ks, ok := keyStrategies[def.KeyStrategy]
		if !ok {
			return nil, errors.New("ratelimit parse policy: no such default key strategy")
		}
		p := Policy{Limiter: factory(def.Limit, def.Window), KeyFn: ks}
		if def.Method != "" {
			rtp.defaultPolicyByMethod = map[method]Policy{normalizeMethod(def.Method): p}
		} else {
			rtp.defaultPolicy = &p
		}
	}

	for _, r := range cfg.Routes {
		pat := Pattern(r.Pattern)
		if _, ok := rtp.policyMap[pat]; !ok {
			rtp.policyMap[pat] = make(map[method]Policy)
		}

		for _, rule := range r.EndpointRules {
			m := normalizeMethod(rule.Method)
			if _, ok := rtp.policyMap[pat][m]; ok {
				return nil, errors.New("ratelimit parse policy: duplicate method config on same pattern")
			}
			ks, ok := keyStrategies[rule.KeyStrategy]
			if !ok {
				return nil, errors.New("ratelimit parse policy: no such key strategy")
			}
			rtp.policyMap[pat][m] = Policy{
				Limiter: factory(rule.Limit, rule.Window),
				KeyFn:   ks,
			}
		}
	}
	return rtp, nil
}

func NewRateLimitMiddleware(p *RuntimePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ri := p.RouteInfoFn(r)

			// unknown routes are the router's business
			if ri.ID == "" {
				next.ServeHTTP(w, r)
				return
			}

			px, ok, src := p.findPolicy(ri)
			if !ok {
				if p.AllowIfNoMatch {
					next.ServeHTTP(w, r)
					return
				}
				slog.WarnContext(ctx, "no rate limit policy found",
					slog.String("middleware", "rate_limiter"),
					slog.Any("route_info", ri),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}
			if src != policySourceExplicit {
				slog.DebugContext(ctx, "using default rate limit policy",
					slog.String("policy_source", string(src)),
					slog.Any("route_info", ri),
				)
			}

			var key rl.Key
			if px.KeyFn != nil {
				key = px.KeyFn(r)
			}
			if key == "" {
				if p.AllowIfNoIdentifier {
					next.ServeHTTP(w, r)
					return
				}
				slog.WarnContext(ctx, "no rate limit key",
					slog.String("middleware", "rate_limiter"),
					slog.Any("route_info", ri),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}

			result, err := px.Limiter.Allow(ctx, key)
			if err != nil {
				// counter store may be down
				slog.ErrorContext(ctx, "rate limit error", slog.Any("error", err), slog.Any("route_info", ri))
				problem.Write(w, problem.ServiceUnavailable("Rate limiter unavailable"))
				return
			}

			writeRateLimitHeaders(w, result)
			if !result.Allowed {
				slog.DebugContext(ctx, "rate limited", slog.String("key", string(key)), slog.Any("route_info", ri))
				w.Header().Set("Retry-After", strconv.FormatInt(ceilSeconds(result.RetryAfter.Seconds()), 10))
				problem.Write(w, problem.TooManyRequests("Rate limit exceeded, retry later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ceilSeconds(s float64) int64 {
	n := int64(s)
	if float64(n) < s {
		n++
	}
	return max(n, 1)
}

func writeRateLimitHeaders(w http.ResponseWriter, result rl.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Window-Seconds", strconv.FormatInt(int64(result.Window.Seconds()), 10))
	h.Set("X-RateLimit-Reset-Seconds", strconv.FormatInt(int64(result.WindowResetIn.Seconds()), 10))
}

// RemoteIpKeyFunc keys on the peer address. When the peer is a trusted proxy,
// X-Forwarded-For is walked from the right and the first untrusted hop wins.
func RemoteIpKeyFunc(trustedProxies []netip.Prefix) KeyFunc {
	return func(r *http.Request) rl.Key {
		client := peerHost(r.RemoteAddr)
		if !trusted(client, trustedProxies) {
			return rl.Key(client)
		}

		hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				break
			}
			client = hop
			if !trusted(hop, trustedProxies) {
				break
			}
		}
		return rl.Key(client)
	}
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func trusted(host string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
