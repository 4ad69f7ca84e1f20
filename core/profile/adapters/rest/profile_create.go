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
	"log/slog"
	"net/http"

	"userprofiles/modules/api/serde"
)

// CreateProfile derives the pid and stores a new profile.
// Returns 201 with the stored profile, 400 for invalid input, 409 for duplicates.
func (p *ProfileAPI) CreateProfile(w http.ResponseWriter, r *http.Request) {
	f := failure{serverError: msgCreateFailed}

	var req CreateProfileRequest
	if err := serde.ParseJsonBody(r.Body, &req); err != nil {
		writeError(w, r, decodeError(err), f)
		return
	}
	in, err := req.toDomain()
	if err != nil {
		writeError(w, r, err, f)
		return
	}

	created, err := p.app.CreateProfile(r.Context(), in)
	if err != nil {
		writeError(w, r, err, f)
		return
	}

	slog.InfoContext(r.Context(), "profile created", slog.String("pid", created.PID))
	serde.WriteJSON(w, http.StatusCreated, toResponse(*created))
}
