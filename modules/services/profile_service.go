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

package services

import (
	"io/fs"
	"net/http"

	"userprofiles/core/profile/adapters/rest"
	"userprofiles/modules/middleware"
	"userprofiles/modules/server"
)

var _ server.RegistrableService = (*ProfileAPIService)(nil)

// ProfileAPIService encapsulates the registration logic for the Profile API.
type ProfileAPIService struct {
	specPath string
	specFS   fs.FS
	handler  *rest.ProfileAPI
}

func NewProfileAPIService(h *rest.ProfileAPI, specFS fs.FS, specPath string) *ProfileAPIService {
	return &ProfileAPIService{specFS: specFS, specPath: specPath, handler: h}
}

// Register mounts the profile API routes.
func (s *ProfileAPIService) Register(mux *http.ServeMux) {
	s.handler.Register(mux)
}

// Middlewares returns the request validation the Profile API depends on.
func (s *ProfileAPIService) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.OpenAPIValidation(s.specFS, s.specPath),
	}
}
