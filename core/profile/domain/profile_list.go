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

import "context"

func (app *Application) ListProfiles(ctx context.Context) ([]Profile, error) {
	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	profiles, err := app.reader.ListProfiles(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list profiles", err)
	}
	if profiles == nil {
		profiles = []Profile{}
	}
	return profiles, nil
}
