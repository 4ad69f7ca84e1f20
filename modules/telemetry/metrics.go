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

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds the server instruments. Attribute names follow the otel
// HTTP semantic conventions.
type HTTPMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Int64Histogram
	active       metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the HTTP instruments on the global meter
// provider. Without an installed provider the instruments are no-ops.
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &HTTPMetrics{}

	var err error
	if m.requests, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Served HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Time to serve a request"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.responseSize, err = meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("Response body size"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.active, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Requests being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Begin counts a request as in flight until the returned func is called.
func (m *HTTPMetrics) Begin(ctx context.Context, method string) func() {
	if m == nil {
		return func() {}
	}
	attrs := metric.WithAttributes(attribute.String("http.request.method", method))
	m.active.Add(ctx, 1, attrs)
	return func() { m.active.Add(ctx, -1, attrs) }
}

// RecordRequest records one served request. route is the matched pattern,
// never the raw path, so cardinality stays bounded.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, durationMs float64, responseSize int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, durationMs, attrs)
	if responseSize > 0 {
		m.responseSize.Record(ctx, responseSize, attrs)
	}
}
