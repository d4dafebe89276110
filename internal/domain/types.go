/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model the admin client exchanges with the content
// site's REST backend. Shapes mirror the server JSON; client-only editing state
// (pending uploads, dirty flags) lives in the gallery and session packages.

import "strings"

// Project is a portfolio entry with rich-text description, a cover image, a
// gallery and free-form key/value rows.
type Project struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"` // rich-text markup
	Image       string         `json:"image,omitempty"`       // cover image URL
	Category    string         `json:"category,omitempty"`    // legacy single-tag field
	Tags        []string       `json:"tags,omitempty"`
	Data        []DataRow      `json:"project_data,omitempty"`
	Gallery     []GalleryImage `json:"gallery,omitempty"`
}

// EffectiveTags returns the tag list, falling back to the legacy category
// field when no explicit tags are present.
func (p Project) EffectiveTags() []string {
	if len(p.Tags) > 0 {
		return p.Tags
	}
	if strings.TrimSpace(p.Category) != "" {
		return []string{p.Category}
	}
	return nil
}

// DataRow is one custom key/value entry attached to a project.
// ID is empty until the row has been persisted.
type DataRow struct {
	ID    string `json:"id,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Blank reports whether the row should be excluded from server
// synchronization (empty or whitespace-only key).
func (r DataRow) Blank() bool { return strings.TrimSpace(r.Key) == "" }

// GalleryImage is one persisted gallery entry. Order is 1-based and
// contiguous within a project's gallery.
type GalleryImage struct {
	ID    int64  `json:"id"`
	Image string `json:"image"` // server URL
	Order int    `json:"order"`
}

// Slide is one entry of the landing-page slider.
type Slide struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// About is the singleton "about us" section.
type About struct {
	Text            string `json:"text"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// User is the authenticated admin account.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}
