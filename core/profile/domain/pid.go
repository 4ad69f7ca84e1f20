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
	"strings"
	"unicode/utf8"
)

const lastNamePrefixLen = 4

// DerivePID computes the primary identifier of a profile: the first character
// of the first name, up to four characters of the last name and the date of
// birth without dashes. No case or whitespace normalization is applied.
//
//	DerivePID("Emma", "John", "1980-05-02") == "EJohn19800502"
//
// Characters are counted as runes.
func DerivePID(firstName, lastName, dateOfBirth string) (string, error) {
	if firstName == "" || lastName == "" || dateOfBirth == "" {
		return "", ErrInvalidData
	}

	var b strings.Builder
	b.Grow(1 + lastNamePrefixLen + len(dateOfBirth))

	first, _ := utf8.DecodeRuneInString(firstName)
	b.WriteRune(first)

	n := 0
	for _, r := range lastName {
		if n == lastNamePrefixLen {
			break
		}
		b.WriteRune(r)
		n++
	}

	b.WriteString(strings.ReplaceAll(dateOfBirth, "-", ""))
	return b.String(), nil
}
