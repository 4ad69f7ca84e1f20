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

package domain

import (
	"context"
	"errors"
	"log/slog"
)

func (app *Application) CreateProfile(ctx context.Context, in NewProfile) (*Profile, error) {
	if err := in.Validate(); err != nil {
		slog.DebugContext(ctx, "invalid profile", slog.Any("error", err))
		return nil, err
	}

	pid, err := DerivePID(in.FirstName, in.LastName, in.DateOfBirth)
	if err != nil {
		return nil, err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	created, err := app.writer.InsertProfile(ctx, Profile{
		PID:         pid,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
	})
	if err == nil {
		slog.DebugContext(ctx, "created profile", slog.String("pid", created.PID))
		return created, nil
	}
	if errors.Is(err, ErrDuplicateProfile) {
		slog.WarnContext(ctx, "duplicate entry", slog.String("pid", pid))
		return nil, ErrDuplicateProfile
	}
	if errors.Is(err, ErrInvalidData) {
		return nil, err
	}
	return nil, storeFailure(ctx, "create profile", err)
}
