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
	"fmt"
	"log/slog"
	"net/http"

	"userprofiles/modules/api/serde"
)

// UpdateProfile applies a partial update and answers 204 with no body.
// An unknown pid is reported as 400, not 404.
func (p *ProfileAPI) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	f := failure{
		serverError:    msgUpdateFailed,
		notFound:       fmt.Sprintf("Profile %s not found", pid),
		notFoundStatus: http.StatusBadRequest,
	}

	var req UpdateProfileRequest
	if err := serde.ParseJsonBody(r.Body, &req); err != nil {
		writeError(w, r, decodeError(err), f)
		return
	}
	changes, err := req.toDomain()
	if err != nil {
		writeError(w, r, err, f)
		return
	}

	updated, err := p.app.UpdateProfile(r.Context(), pid, changes)
	if err != nil {
		writeError(w, r, err, f)
		return
	}

	slog.InfoContext(r.Context(), "profile updated", slog.String("old_pid", pid), slog.String("pid", updated.PID))
	w.WriteHeader(http.StatusNoContent)
}
