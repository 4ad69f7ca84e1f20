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

// Package problem renders JSON error bodies.
//
// Framework level failures (validation, unknown routes, panics, throttling)
// carry statusCode, error and message, the shape clients of the service
// already parse. Handler level failures usually set only message or error.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Problem struct {
	// Status is the HTTP status written; it is not part of the body.
	Status int `json:"-"`

	StatusCode    int            `json:"statusCode,omitempty"`
	Title         string         `json:"error,omitempty"`
	Message       string         `json:"message,omitempty"`
	Details       string         `json:"details,omitempty"`
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`

	// Extensions holds additional non-standard fields.
	Extensions map[string]any `json:"-"`
}

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Option func(*Problem)

// New builds a problem with status 500 unless an option says otherwise.
func New(opts ...Option) *Problem {
	p := &Problem{Status: http.StatusInternalServerError}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	return p
}

func Write(w http.ResponseWriter, p *Problem) {
	if p == nil {
		p = Internal("Internal Server Error", "")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func WithStatus(status int) Option {
	return func(p *Problem) { p.Status = status }
}

// WithStatusCode also echoes the status in the body.
func WithStatusCode(status int) Option {
	return func(p *Problem) {
		p.Status = status
		p.StatusCode = status
	}
}

func WithTitle(title string) Option {
	return func(p *Problem) { p.Title = title }
}

func WithMessage(msg string) Option {
	return func(p *Problem) { p.Message = msg }
}

func WithDetails(details string) Option {
	return func(p *Problem) { p.Details = details }
}

func WithInvalidParam(name, reason string) Option {
	return func(p *Problem) {
		p.InvalidParams = append(p.InvalidParams, InvalidParam{Name: name, Reason: reason})
	}
}

func WithExtension(key string, value any) Option {
	return func(p *Problem) {
		if p.Extensions == nil {
			p.Extensions = map[string]any{}
		}
		p.Extensions[key] = value
	}
}

func framework(status int, msg string, opts []Option) *Problem {
	base := []Option{
		WithStatusCode(status),
		WithTitle(http.StatusText(status)),
		WithMessage(msg),
	}
	return New(append(base, opts...)...)
}

func BadRequest(msg string, opts ...Option) *Problem {
	return framework(http.StatusBadRequest, msg, opts)
}

// RouteNotFound is the body for requests no route matches.
func RouteNotFound(method, path string) *Problem {
	return framework(http.StatusNotFound, fmt.Sprintf("Route %s:%s not found", method, path), nil)
}

func TooManyRequests(msg string, opts ...Option) *Problem {
	return framework(http.StatusTooManyRequests, msg, opts)
}

func ServiceUnavailable(msg string, opts ...Option) *Problem {
	return framework(http.StatusServiceUnavailable, msg, opts)
}

// Internal is a 500 whose error is title and whose details carry the cause.
func Internal(title, details string, opts ...Option) *Problem {
	base := []Option{
		WithStatus(http.StatusInternalServerError),
		WithTitle(title),
		WithDetails(details),
	}
	return New(append(base, opts...)...)
}

// MarshalJSON merges Extensions into the base object. Known keys win.
func (p Problem) MarshalJSON() ([]byte, error) {
	// alias drops the method set so json.Marshal does not recurse
	type alias Problem
	base, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extensions) == 0 {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range p.Extensions {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}
