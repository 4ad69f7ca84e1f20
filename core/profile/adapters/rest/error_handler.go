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
	"errors"
	"log/slog"
	"net/http"

	"userprofiles/core/profile/domain"
	"userprofiles/modules/middleware"
	"userprofiles/modules/middleware/problem"
)

const (
	msgListFailed     = "Failed to retrieve profiles"
	msgRetrieveFailed = "Failed to retrieve profile due to a server error"
	msgCreateFailed   = "Failed to create user due to a server error"
	msgUpdateFailed   = "Failed to update profile due to a server error"

	msgDuplicate  = "A profile with same name and date of birth already exists."
	msgConcurrent = "Profile was modified by another request, retry the update."
)

// failure describes how one handler reports domain errors.
type failure struct {
	// error of the 500 body
	serverError string

	// message of the not found body, and its status (404 when zero)
	notFound       string
	notFoundStatus int

	// where invalid input came from; param renames the offending field
	location string
	param    string
}

func writeError(w http.ResponseWriter, r *http.Request, err error, f failure) {
	ctx := r.Context()

	switch {
	case errors.Is(err, domain.ErrInvalidData):
		slog.DebugContext(ctx, "invalid profile input", slog.Any("error", err))
		problem.Write(w, validationProblem(err, f))
	case errors.Is(err, domain.ErrProfileNotFound):
		status := f.notFoundStatus
		if status == 0 {
			status = http.StatusNotFound
		}
		problem.Write(w, problem.New(problem.WithStatus(status), problem.WithMessage(f.notFound)))
	case errors.Is(err, domain.ErrDuplicateProfile):
		problem.Write(w, problem.New(problem.WithStatus(http.StatusConflict), problem.WithTitle(msgDuplicate)))
	case errors.Is(err, domain.ErrConcurrentUpdate):
		problem.Write(w, problem.New(problem.WithStatus(http.StatusConflict), problem.WithTitle(msgConcurrent)))
	default:
		details := err.Error()
		var se *domain.StoreError
		if errors.As(err, &se) {
			details = se.Err.Error()
		}
		slog.ErrorContext(ctx, f.serverError, slog.Any("error", err))
		problem.Write(w, problem.Internal(f.serverError, details))
	}
}

// validationProblem renders every *domain.ValidationError joined in err, the
// first one becoming the message.
func validationProblem(err error, f failure) *problem.Problem {
	loc := f.location
	if loc == "" {
		loc = middleware.LocationBody
	}

	var (
		msg  string
		opts []problem.Option
	)
	for _, ve := range validationErrors(err) {
		v := middleware.ValidationError{Location: loc, Field: ve.Field, Reason: ve.Reason}
		if f.param != "" {
			v.Field = f.param
		}
		if v.Field == "body" {
			v.Field = ""
		}
		if msg == "" {
			msg = v.Message()
		}
		opts = append(opts, problem.WithInvalidParam(v.Field, v.Reason))
	}
	if msg == "" {
		msg = "Invalid request"
	}
	return problem.BadRequest(msg, opts...)
}

func validationErrors(err error) []*domain.ValidationError {
	switch e := err.(type) {
	case *domain.ValidationError:
		return []*domain.ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []*domain.ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, validationErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return validationErrors(e.Unwrap())
	}
	return nil
}
