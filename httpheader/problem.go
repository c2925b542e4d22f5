// Copyright 2025 The Rivaas Authors
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

package httpheader

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rivaas.dev/headermap"
)

// ProblemContentType is the media type of RFC 9457 problem details.
const ProblemContentType = "application/problem+json"

// Problem is an RFC 9457 problem detail describing a marshaling failure.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Extensions.
	Code     string `json:"code,omitempty"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
}

var problemTitles = map[string]string{
	headermap.CodeMissingField:  "Missing Header",
	headermap.CodeInvalidValue:  "Invalid Header Value",
	headermap.CodeInvalidLength: "Invalid Header Count",
	headermap.CodeInvalidUTF8:   "Invalid Header Encoding",
	headermap.CodeUnsupported:   "Unsupported Header Type",
	headermap.CodeCustom:        "Header Error",
}

// NewProblem builds the problem detail for err. baseURL is prepended to the
// problem type slug; an empty baseURL yields "about:blank".
//
// Errors other than [*headermap.Error] map to a 500 problem without
// field details.
func NewProblem(r *http.Request, err error, baseURL string) Problem {
	p := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusInternalServerError),
		Status: http.StatusInternalServerError,
		Detail: err.Error(),
	}
	if r != nil && r.URL != nil {
		p.Instance = r.URL.Path
	}

	var herr *headermap.Error
	if !errors.As(err, &herr) {
		return p
	}

	code := herr.Code()
	p.Status = herr.HTTPStatus()
	p.Title = problemTitles[code]
	p.Code = code
	p.Field = herr.Field
	p.Expected = herr.Expected
	if baseURL != "" {
		p.Type = strings.TrimSuffix(baseURL, "/") + "/" + strings.ReplaceAll(code, "_", "-")
	}

	return p
}

// WriteProblem writes err to w as an RFC 9457 problem detail.
//
// Example:
//
//	up, err := httpheader.DecodeRequest[Upload](r)
//	if err != nil {
//	    httpheader.WriteProblem(w, r, err, "https://api.example.com/problems")
//	    return
//	}
func WriteProblem(w http.ResponseWriter, r *http.Request, err error, baseURL string) error {
	p := NewProblem(r, err, baseURL)
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.Status)

	return json.NewEncoder(w).Encode(p)
}
