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
package server

import "net/http"

// RegistrableService is a self-contained set of routes.
type RegistrableService interface {
	// Register mounts the service's routes on mux.
	Register(mux *http.ServeMux)

	// Middlewares wrap the whole mux, inside the global middlewares.
	Middlewares() []func(http.Handler) http.Handler
}
