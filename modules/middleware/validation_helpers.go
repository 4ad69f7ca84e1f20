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
package middleware

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

// Request locations, named the way clients of this service expect.
const (
	LocationBody   = "body"
	LocationParams = "params"
	LocationQuery  = "querystring"
	LocationHeader = "headers"
)

// ValidationError is one rejected input. Field is empty when the location
// as a whole is at fault, e.g. a body with no properties.
type ValidationError struct {
	Location string
	Field    string
	Reason   string
}

// Message renders "body/firstName must ..." or "body must ...".
func (v ValidationError) Message() string {
	if v.Field == "" {
		return v.Location + " " + v.Reason
	}
	return v.Location + "/" + v.Field + " " + v.Reason
}

// ExtractValidationErrors flattens a kin-openapi validation error.
func ExtractValidationErrors(err error) []ValidationError {
	switch v := err.(type) {
	case openapi3.MultiError:
		var out []ValidationError
		for _, item := range v {
			out = append(out, ExtractValidationErrors(item)...)
		}
		return out
	case *openapi3filter.RequestError:
		return fromRequestError(v)
	case *openapi3.SchemaError:
		return []ValidationError{fromSchemaError(LocationBody, v)}
	case *openapi3filter.SecurityRequirementsError:
		return []ValidationError{{Location: LocationHeader, Field: "authorization", Reason: "missing or invalid credentials"}}
	}
	return []ValidationError{{Location: LocationBody, Reason: "invalid value"}}
}

func fromRequestError(re *openapi3filter.RequestError) []ValidationError {
	loc := LocationBody
	param := ""
	if re.Parameter != nil {
		loc = parameterLocation(re.Parameter.In)
		param = re.Parameter.Name
	}

	var schemaErrs []*openapi3.SchemaError
	switch inner := re.Err.(type) {
	case openapi3.MultiError:
		for _, item := range inner {
			if se, ok := item.(*openapi3.SchemaError); ok {
				schemaErrs = append(schemaErrs, se)
			}
		}
	case *openapi3.SchemaError:
		schemaErrs = append(schemaErrs, inner)
	}

	if len(schemaErrs) == 0 {
		return []ValidationError{{Location: loc, Field: param, Reason: SafeReason(re.Reason)}}
	}

	out := make([]ValidationError, 0, len(schemaErrs))
	for _, se := range schemaErrs {
		v := fromSchemaError(loc, se)
		if param != "" {
			v.Field = param
		}
		out = append(out, v)
	}
	return out
}

func fromSchemaError(loc string, se *openapi3.SchemaError) ValidationError {
	field := fieldFromPointer(se.JSONPointer())
	if field == "" {
		field = propertyFromReason(se.Reason)
	}
	return ValidationError{Location: loc, Field: field, Reason: se.Reason}
}

func fieldFromPointer(ptr []string) string {
	if len(ptr) == 0 {
		return ""
	}
	return ptr[0]
}

// propertyFromReason picks x out of `property "x" is unsupported`, which
// kin-openapi reports against the parent object.
func propertyFromReason(reason string) string {
	rest, ok := strings.CutPrefix(reason, `property "`)
	if !ok {
		return ""
	}
	name, _, ok := strings.Cut(rest, `"`)
	if !ok {
		return ""
	}
	return name
}

func parameterLocation(in string) string {
	switch in {
	case openapi3.ParameterInPath:
		return LocationParams
	case openapi3.ParameterInQuery:
		return LocationQuery
	case openapi3.ParameterInHeader:
		return LocationHeader
	}
	return in
}

// SafeReason keeps a reason only when it cannot echo the request back.
func SafeReason(reason string) string {
	if reason == "" {
		return "invalid value"
	}
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "doesn't match schema"):
		return "doesn't match schema"
	case strings.Contains(lower, "must be one of"):
		return reason
	case strings.Contains(lower, "value is required"),
		strings.Contains(lower, "header content-type has unexpected value"),
		strings.Contains(lower, "request body has an error"):
		return reason
	}
	return "invalid value"
}
