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

func (app *Application) GetProfileByID(ctx context.Context, pid string) (*Profile, error) {
	if err := validateKey(FieldPID, pid); err != nil {
		return nil, err
	}
	return app.findProfile(ctx, FieldPID, pid)
}

func (app *Application) GetProfileByLastName(ctx context.Context, lastName string) (*Profile, error) {
	if err := validateKey(FieldLastName, lastName); err != nil {
		return nil, err
	}
	return app.findProfile(ctx, FieldLastName, lastName)
}

func (app *Application) GetProfileByDateOfBirth(ctx context.Context, dob string) (*Profile, error) {
	if err := ValidateDate(FieldDateOfBirth, dob); err != nil {
		return nil, err
	}
	return app.findProfile(ctx, FieldDateOfBirth, dob)
}

func (app *Application) findProfile(ctx context.Context, field Field, value string) (*Profile, error) {
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	prof, err := app.reader.FindProfile(ctx, field, value)
	if err == nil {
		return prof, nil
	}
	if errors.Is(err, ErrProfileNotFound) {
		slog.DebugContext(ctx, "profile not found", slog.String("field", field.String()), slog.String("value", value))
		return nil, ErrProfileNotFound
	}
	return nil, storeFailure(ctx, "find profile", err)
}
