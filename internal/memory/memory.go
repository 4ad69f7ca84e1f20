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

// Package memory is an in-process profile store with the same error contract
// as the Postgres adapter, for tests only.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"userprofiles/core/profile/domain"
)

var (
	_ domain.ProfileReadStore  = (*Store)(nil)
	_ domain.ProfileWriteStore = (*Store)(nil)
)

type Store struct {
	mu   sync.RWMutex
	rows map[string]domain.Profile
	fail error

	calls atomic.Int64
}

func New(seed ...domain.Profile) *Store {
	s := &Store{rows: make(map[string]domain.Profile, len(seed))}
	for _, p := range seed {
		s.rows[p.PID] = p
	}
	return s
}

// FailWith makes every following call return err, nil restores normal behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Calls returns how many store operations were attempted.
func (s *Store) Calls() int64 {
	return s.calls.Load()
}

func (s *Store) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	s.calls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return s.sorted(), nil
}

func (s *Store) FindProfile(ctx context.Context, field domain.Field, value string) (*domain.Profile, error) {
	s.calls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}

	for _, p := range s.sorted() {
		if fieldValue(p, field) == value {
			return &p, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *Store) InsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	if _, ok := s.rows[p.PID]; ok {
		return nil, domain.ErrDuplicateProfile
	}
	s.rows[p.PID] = p
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, pid string, changes domain.ProfileChanges) (*domain.Profile, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	current, ok := s.rows[pid]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	next, err := current.Apply(changes)
	if err != nil {
		return nil, err
	}
	if next.PID != pid {
		if _, taken := s.rows[next.PID]; taken {
			return nil, domain.ErrDuplicateProfile
		}
		delete(s.rows, pid)
	}
	s.rows[next.PID] = next
	return &next, nil
}

func (s *Store) sorted() []domain.Profile {
	out := make([]domain.Profile, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Profile) int {
		return strings.Compare(a.PID, b.PID)
	})
	return out
}

func fieldValue(p domain.Profile, f domain.Field) string {
	switch f {
	case domain.FieldPID:
		return p.PID
	case domain.FieldFirstName:
		return p.FirstName
	case domain.FieldLastName:
		return p.LastName
	case domain.FieldDateOfBirth:
		return p.DateOfBirth
	}
	return ""
}
