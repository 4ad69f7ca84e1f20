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
package middleware

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"userprofiles/modules/middleware/problem"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

var (
	specCacheMu sync.Mutex
	specCache   = make(map[specCacheKey]*specCacheEntry)
)

type specCacheKey struct {
	path string
}

type specCacheEntry struct {
	doc *openapi3.T
	err error
}

// loadSpec parses and validates the document once per path.
func loadSpec(ctx context.Context, fsys fs.FS, specPath string) (*openapi3.T, error) {
	key := specCacheKey{path: specPath}

	specCacheMu.Lock()
	defer specCacheMu.Unlock()

	if entry, ok := specCache[key]; ok {
		return entry.doc, entry.err
	}

	doc, err := parseSpec(ctx, fsys, specPath)
	specCache[key] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

func parseSpec(ctx context.Context, fsys fs.FS, specPath string) (*openapi3.T, error) {
	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", specPath, err)
	}

	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", specPath, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: invalid %s: %w", specPath, err)
	}
	return doc, nil
}

// OpenAPIValidation rejects requests that do not match the document at
// specPath. Unknown routes get the route-not-found body, every other
// violation a 400 listing the offending fields.
//
// A document that fails to load turns every request into a 500.
func OpenAPIValidation(specFS fs.FS, specPath string) func(http.Handler) http.Handler {
	spec, err := loadSpec(context.Background(), specFS, specPath)
	if err != nil {
		slog.Error("openapi validation disabled", slog.Any("error", err))
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				problem.Write(w, problem.Internal("Request validation unavailable", err.Error()))
			})
		}
	}

	opts := &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			writeValidationError(ctx, err, w, r, eopts.StatusCode)
		},
	}
	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}

func writeValidationError(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, status int) {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		problem.Write(w, problem.RouteNotFound(r.Method, r.URL.Path))
		return
	}

	violations := ExtractValidationErrors(err)
	slog.DebugContext(ctx, "request rejected by schema",
		slog.String("path", r.URL.Path),
		slog.Any("violations", violations),
	)

	opts := make([]problem.Option, 0, len(violations))
	for _, v := range violations {
		opts = append(opts, problem.WithInvalidParam(v.Field, v.Reason))
	}

	msg := "Invalid request"
	if len(violations) > 0 {
		msg = violations[0].Message()
	}
	problem.Write(w, problem.BadRequest(msg, opts...))
}
