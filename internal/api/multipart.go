/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
)

// DefaultUploadName is used when a picked file carries no usable name.
const DefaultUploadName = "uploaded-image.png"

type formPart struct {
	field    string
	value    string
	filename string
	data     []byte
	file     bool
}

// Form accumulates multipart fields in insertion order. Repeated field names
// are allowed (tags[]).
type Form struct {
	parts []formPart
}

// NewForm returns an empty multipart form builder.
func NewForm() *Form { return &Form{} }

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) {
	f.parts = append(f.parts, formPart{field: name, value: value})
}

// AddFile appends a binary file part. An empty filename falls back to
// DefaultUploadName, matching what the web admin always sent.
func (f *Form) AddFile(name, filename string, data []byte) {
	if strings.TrimSpace(filename) == "" {
		filename = DefaultUploadName
	}
	f.parts = append(f.parts, formPart{field: name, filename: filename, data: data, file: true})
}

// Encode writes the form to a multipart body and returns it with the matching
// Content-Type (including boundary).
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.file {
			fw, err := w.CreateFormFile(p.field, p.filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := fw.Write(p.data); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := w.WriteField(p.field, p.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
