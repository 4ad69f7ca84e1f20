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

// UpdateProfile applies a partial update to the profile identified by pid.
// The pid of the stored profile is recomputed from the merged fields, so the
// profile may no longer be reachable under the pid used to address it.
func (app *Application) UpdateProfile(ctx context.Context, pid string, changes ProfileChanges) (*Profile, error) {
	if err := errors.Join(validateKey(FieldPID, pid), changes.Validate()); err != nil {
		slog.DebugContext(ctx, "invalid profile changes", slog.Any("error", err))
		return nil, err
	}

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	updated, err := app.writer.UpdateProfile(ctx, pid, changes)
	if err == nil {
		slog.DebugContext(ctx, "updated profile", slog.String("old_pid", pid), slog.String("pid", updated.PID))
		return updated, nil
	}

	switch {
	case errors.Is(err, ErrProfileNotFound):
		return nil, ErrProfileNotFound
	case errors.Is(err, ErrDuplicateProfile):
		slog.WarnContext(ctx, "duplicate entry", slog.String("pid", pid))
		return nil, ErrDuplicateProfile
	case errors.Is(err, ErrConcurrentUpdate):
		slog.WarnContext(ctx, "concurrent update", slog.String("pid", pid))
		return nil, ErrConcurrentUpdate
	case errors.Is(err, ErrInvalidData):
		return nil, err
	}
	return nil, storeFailure(ctx, "update profile", err)
}
