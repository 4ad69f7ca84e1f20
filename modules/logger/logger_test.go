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
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestRequestIDIsAttached(t *testing.T) {
	var buf bytes.Buffer
	log, flush, err := initTo(&buf, Config{Level: "info", Format: "json"}, "prod")
	if err != nil {
		t.Fatal(err)
	}
	defer flush()

	ctx := WithRequestID(context.Background(), "req-1")
	log.InfoContext(ctx, "hello")
	log.Info("no context")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first["request_id"] != "req-1" {
		t.Fatalf("request_id missing in %v", first)
	}
	if _, ok := second["request_id"]; ok {
		t.Fatalf("unexpected request_id in %v", second)
	}
}

func TestDevDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := initTo(&buf, Config{}, "dev")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello", slog.String("k", "v"))
	if !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, _, err := initTo(&bytes.Buffer{}, Config{Format: "xml"}, "dev"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestInitLeavesDefaultAlone(t *testing.T) {
	prev := slog.Default()
	if _, _, err := initTo(&bytes.Buffer{}, Config{Format: "json"}, "prod"); err != nil {
		t.Fatal(err)
	}
	if slog.Default() != prev {
		t.Fatal("initTo replaced the default logger")
	}
}
