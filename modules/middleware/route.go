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
	"net/http"
	"strings"
)

// RouteFunc resolves the route pattern a request will be served by, without
// the method prefix. It returns "" when only the catch-all matches.
type RouteFunc func(*http.Request) string

// MuxPattern resolves routes against mux before it serves the request, so
// middlewares wrapping the mux can key on the pattern.
func MuxPattern(mux *http.ServeMux) RouteFunc {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		if _, path, ok := strings.Cut(pattern, " "); ok {
			pattern = path
		}
		if pattern == "/" {
			return ""
		}
		return pattern
	}
}

func routeOr(fn RouteFunc, r *http.Request) string {
	if fn == nil {
		return ""
	}
	return fn(r)
}
