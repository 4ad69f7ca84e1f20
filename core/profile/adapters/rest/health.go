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
	"context"
	"log/slog"
	"net/http"
	"time"

	"userprofiles/modules/api/serde"
	"userprofiles/modules/middleware/problem"
)

const readyTimeout = 2 * time.Second

type message struct {
	Message string `json:"message"`
}

// Health reports that the process is serving requests.
func (p *ProfileAPI) Health(w http.ResponseWriter, r *http.Request) {
	serde.WriteJSON(w, http.StatusOK, message{Message: "Server is healthy"})
}

// Ready pings the database, 503 when it does not answer in time.
func (p *ProfileAPI) Ready(w http.ResponseWriter, r *http.Request) {
	if p.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := p.health.HealthCheck(ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed", slog.Any("error", err))
			problem.Write(w, problem.ServiceUnavailable("Database is unreachable"))
			return
		}
	}
	serde.WriteJSON(w, http.StatusOK, message{Message: "Database is reachable"})
}
