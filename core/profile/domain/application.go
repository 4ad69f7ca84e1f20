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
	"time"
)

type AppOption func(*Application)

// WithQueryTimeout bounds every store call made by the application.
func WithQueryTimeout(d time.Duration) AppOption {
	return func(app *Application) {
		app.queryTimeout = d
	}
}

func NewApp(reader ProfileReadStore, writer ProfileWriteStore, opts ...AppOption) *Application {
	app := &Application{reader: reader, writer: writer}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

func (app *Application) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if app.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, app.queryTimeout)
}

// storeFailure makes sure an unclassified error reaches the caller as a
// *StoreError. Callers at the edge own error-level logging.
func storeFailure(ctx context.Context, op string, err error) error {
	slog.DebugContext(ctx, "profile store failure", slog.String("op", op), slog.Any("error", err))

	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	return &StoreError{Op: op, Err: err}
}
