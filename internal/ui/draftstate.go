/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop front end. The Fyne shell lives behind build tags;
// this file holds the draft payload codec shared by all builds.
package ui

import (
	"encoding/json"

	"gositeadmin/internal/domain"
	"gositeadmin/internal/session"
)

// ProjectDraft is the serialized form of an unsubmitted project session. Image
// bytes are deliberately left out; a restored draft re-picks files.
type ProjectDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Rows        []domain.DataRow `json:"rows"`
}

// EncodeProjectDraft captures the text state of a project session.
func EncodeProjectDraft(e *session.Editor) ([]byte, error) {
	d := ProjectDraft{
		Title:       e.Form.Title,
		Description: e.Form.Description,
		Tags:        e.Form.Tags,
		Rows:        e.Rows,
	}
	return json.Marshal(d)
}

// ApplyProjectDraft restores a saved draft into an open session, overwriting
// its text fields and rows.
func ApplyProjectDraft(e *session.Editor, data []byte) error {
	var d ProjectDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Form.Title = d.Title
	e.Form.Description = d.Description
	e.Form.Tags = d.Tags
	e.Rows = d.Rows
	return nil
}

// SlideDraft is the serialized form of an unsubmitted slide session.
type SlideDraft struct {
	Title string `json:"title"`
}

// EncodeSlideDraft captures the text state of a slide session.
func EncodeSlideDraft(e *session.SlideEditor) ([]byte, error) {
	return json.Marshal(SlideDraft{Title: e.Title})
}

// ApplySlideDraft restores a saved draft into an open slide session.
func ApplySlideDraft(e *session.SlideEditor, data []byte) error {
	var d SlideDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Title = d.Title
	return nil
}

// AboutDraft is the serialized form of an unsubmitted about session.
type AboutDraft struct {
	Text string `json:"text"`
}

// EncodeAboutDraft captures the text state of the about session.
func EncodeAboutDraft(e *session.AboutEditor) ([]byte, error) {
	return json.Marshal(AboutDraft{Text: e.Text})
}

// ApplyAboutDraft restores a saved draft into an open about session.
func ApplyAboutDraft(e *session.AboutEditor, data []byte) error {
	var d AboutDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Text = d.Text
	return nil
}
