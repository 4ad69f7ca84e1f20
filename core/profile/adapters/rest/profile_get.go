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
	"net/http"

	"userprofiles/core/profile/domain"
	"userprofiles/modules/api/serde"
	"userprofiles/modules/etag"
	"userprofiles/modules/middleware"
)

// GetProfileByID returns the profile stored under pid, 404 otherwise.
func (p *ProfileAPI) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	pid := r.PathValue("pid")
	prof, err := p.app.GetProfileByID(r.Context(), pid)
	p.writeProfile(w, r, prof, err, failure{
		notFound: fmt.Sprintf("Profile %s not found", pid),
		param:    "pid",
	})
}

// GetProfileByLastName returns the first profile, by pid, with the given last name.
func (p *ProfileAPI) GetProfileByLastName(w http.ResponseWriter, r *http.Request) {
	lastName := r.PathValue("lastName")
	prof, err := p.app.GetProfileByLastName(r.Context(), lastName)
	p.writeProfile(w, r, prof, err, failure{
		notFound: fmt.Sprintf("Profile %s not found", lastName),
		param:    "lastName",
	})
}

// GetProfileByDateOfBirth returns the first profile, by pid, born on dob.
func (p *ProfileAPI) GetProfileByDateOfBirth(w http.ResponseWriter, r *http.Request) {
	dob := r.PathValue("dob")
	prof, err := p.app.GetProfileByDateOfBirth(r.Context(), dob)
	p.writeProfile(w, r, prof, err, failure{
		notFound: fmt.Sprintf("Profile with %s not found", dob),
		param:    "dob",
	})
}

func (p *ProfileAPI) writeProfile(w http.ResponseWriter, r *http.Request, prof *domain.Profile, err error, f failure) {
	if err != nil {
		f.serverError = msgRetrieveFailed
		f.location = middleware.LocationParams
		writeError(w, r, err, f)
		return
	}

	tag := etag.Of(prof.PID, prof.FirstName, prof.LastName, prof.DateOfBirth)
	w.Header().Set("ETag", tag)
	if etag.Match(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	serde.WriteJSON(w, http.StatusOK, toResponse(*prof))
}
