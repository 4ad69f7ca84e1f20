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

import "testing"

func TestClientOptions(t *testing.T) {
	opt, err := ClientOptions(RedisConfig{URL: "redis://:secret@cache:6380/2", ClientName: "svc"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opt.InitAddress) != 1 || opt.InitAddress[0] != "cache:6380" {
		t.Fatalf("InitAddress = %v", opt.InitAddress)
	}
	if opt.Password != "secret" || opt.SelectDB != 2 || opt.ClientName != "svc" {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatal("redis:// must not enable TLS")
	}
}

func TestClientOptionsTLS(t *testing.T) {
	if _, err := ClientOptions(RedisConfig{URL: "redis://cache:6379", RequireTLS: true}); err == nil {
		t.Fatal("plaintext URL must be rejected when TLS is required")
	}

	opt, err := ClientOptions(RedisConfig{URL: "rediss://cache:6379", RequireTLS: true, SkipTLSVerify: true})
	if err != nil {
		t.Fatal(err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected TLS with verification disabled")
	}
}

func TestClientOptionsEmptyURL(t *testing.T) {
	if _, err := ClientOptions(RedisConfig{}); err == nil {
		t.Fatal("expected an error for an empty URL")
	}
}
