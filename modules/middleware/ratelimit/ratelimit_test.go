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
	"fmt"
	"net/http"
	"net/netip"
	"net/http/httptest"
	"testing"
	"time"

	"userprofiles/modules/clock"
	rl "userprofiles/modules/ratelimit"
)

func staticRoute(pattern string) RouteInfoFunc {
	return func(r *http.Request) RouteInfo {
		return RouteInfo{ID: Pattern(pattern), Method: r.Method, Path: r.URL.Path}
	}
}

func frozen() clock.Clock {
	at := time.Unix(1_700_000_000, 0)
	return clock.Func(func() time.Time { return at })
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimitMiddleware_RouteRule(t *testing.T) {
	cfg := &RestHTTPConfig{
		Routes: []Route{{
			Pattern: "/profile",
			EndpointRules: []EndpointRule{
				{Method: "post", Limit: 2, Window: time.Minute, KeyStrategy: RemoteIpKeyStrategy},
			},
		}},
		AllowIfNoMatch: true,
	}
	policy, err := ParsePolicy(rl.TokenBucketFactory(frozen()), cfg, staticRoute("/profile"), KeyStrategies(nil))
	if err != nil {
		t.Fatal(err)
	}
	h := NewRateLimitMiddleware(policy)(http.HandlerFunc(ok))

	do := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/profile", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := range 2 {
		rec := do(http.MethodPost)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("missing rate limit headers: %v", rec.Header())
		}
	}

	rec := do(http.MethodPost)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 must carry Retry-After")
	}

	// GET has no rule and no default
	if rec := do(http.MethodGet); rec.Code != http.StatusOK {
		t.Fatalf("unmatched method status = %d", rec.Code)
	}
}

func TestRateLimitMiddleware_UnknownRoutePassesThrough(t *testing.T) {
	policy, err := ParsePolicy(rl.TokenBucketFactory(frozen()), &RestHTTPConfig{}, staticRoute(""), KeyStrategies(nil))
	if err != nil {
		t.Fatal(err)
	}
	h := NewRateLimitMiddleware(policy)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want the router's 404", rec.Code)
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	factory := rl.TokenBucketFactory(frozen())

	dup := &RestHTTPConfig{Routes: []Route{{
		Pattern: "/profile",
		EndpointRules: []EndpointRule{
			{Method: "POST", Limit: 1, Window: time.Second, KeyStrategy: RemoteIpKeyStrategy},
			{Method: "post", Limit: 1, Window: time.Second, KeyStrategy: RemoteIpKeyStrategy},
		},
	}}}
	if _, err := ParsePolicy(factory, dup, staticRoute("/profile"), KeyStrategies(nil)); err == nil {
		t.Fatal("duplicate method must be rejected")
	}

	unknown := &RestHTTPConfig{DefaultPolicy: EndpointRule{Limit: 1, Window: time.Second, KeyStrategy: "api_key"}}
	if _, err := ParsePolicy(factory, unknown, staticRoute("/profile"), KeyStrategies(nil)); err == nil {
		t.Fatal("unknown key strategy must be rejected")
	}
}

func TestRemoteIpKeyFunc(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		xff     string
		trusted []netip.Prefix
		want    rl.Key
	}{
		{name: "direct peer", remote: "192.0.2.10:1234", want: "192.0.2.10"},
		{name: "forwarded header from untrusted peer", remote: "192.0.2.10:1234", xff: "203.0.113.7", want: "192.0.2.10"},
		{name: "forwarded header without proxies", remote: "10.0.0.1:1234", xff: "203.0.113.7", want: "10.0.0.1"},
		{name: "trusted proxy", remote: "10.0.0.1:1234", xff: "203.0.113.7, 198.51.100.2", trusted: proxies, want: "198.51.100.2"},
		{name: "proxy chain", remote: "10.0.0.1:1234", xff: "203.0.113.7, 10.1.2.3", trusted: proxies, want: "203.0.113.7"},
		{name: "trusted proxy without header", remote: "10.0.0.1:1234", trusted: proxies, want: "10.0.0.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := RemoteIpKeyFunc(tc.trusted)(req); got != tc.want {
				t.Fatalf("key = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimitMiddleware_ForwardedHeaderFromUntrustedPeer(t *testing.T) {
	cfg := &RestHTTPConfig{
		Routes: []Route{{
			Pattern: "/profile",
			EndpointRules: []EndpointRule{
				{Method: http.MethodPost, Limit: 2, Window: time.Minute, KeyStrategy: RemoteIpKeyStrategy},
			},
		}},
	}
	trusted := []netip.Prefix{netip.MustParsePrefix("172.16.0.0/12")}
	policy, err := ParsePolicy(rl.TokenBucketFactory(frozen()), cfg, staticRoute("/profile"), KeyStrategies(trusted))
	if err != nil {
		t.Fatal(err)
	}
	h := NewRateLimitMiddleware(policy)(http.HandlerFunc(ok))

	allowed := 0
	for i := range 10 {
		req := httptest.NewRequest(http.MethodPost, "/profile", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("allowed %d of 10 requests from one peer, want 2", allowed)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	bad := &Config{Enabled: true, Backend: "disk"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected errors for an unknown backend without policies")
	}
	good := &Config{
		Enabled: true,
		Backend: BackendMemory,
		RestHTTPConfig: RestHTTPConfig{
			DefaultPolicy: EndpointRule{Limit: 10, Window: time.Second, KeyStrategy: RemoteIpKeyStrategy},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}
}
