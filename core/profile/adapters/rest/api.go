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

package rest

import (
	"net/http"

	"userprofiles/core/profile/domain"
	"userprofiles/modules/db"
	"userprofiles/modules/middleware/problem"
)

// ProfileAPI implements the HTTP handlers for profile operations.
// It acts as the REST adapter in the hexagonal architecture, translating
// HTTP requests into domain operations.
type ProfileAPI struct {
	app *domain.Application

	// nil when the backing store has nothing to ping
	health db.HealthManager
}

func NewProfileAPI(app *domain.Application, health db.HealthManager) *ProfileAPI {
	return &ProfileAPI{app: app, health: health}
}

// Register mounts every profile route on mux. Requests no route matches get
// a 404 problem naming the method and path.
func (p *ProfileAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", p.Health)
	mux.HandleFunc("GET /ready", p.Ready)

	mux.HandleFunc("GET /profiles", p.ListProfiles)
	mux.HandleFunc("GET /profileById/{pid}", p.GetProfileByID)
	mux.HandleFunc("GET /profileByLastName/{lastName}", p.GetProfileByLastName)
	mux.HandleFunc("GET /profileByDob/{dob}", p.GetProfileByDateOfBirth)
	mux.HandleFunc("POST /profile", p.CreateProfile)
	mux.HandleFunc("PATCH /profile/{pid}", p.UpdateProfile)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, problem.RouteNotFound(r.Method, r.URL.Path))
	})
}
