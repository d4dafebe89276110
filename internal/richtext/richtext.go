/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package richtext converts between the markdown edited in the desktop client
// and the sanitized HTML markup stored in the description fields. The web
// admin used a WYSIWYG editor; the desktop client keeps the same wire format
// (HTML) but lets the operator write markdown.
package richtext

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = contentPolicy()
)

// contentPolicy allows the subset the site's editor produced: UGC defaults
// plus images and text alignment.
func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style").OnElements("p", "span", "h1", "h2", "h3", "li")
	p.AllowAttrs("alt", "title").OnElements("img")
	return p
}

// Render converts markdown to sanitized HTML markup ready for the
// description/text fields.
func Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(sanitizer.Sanitize(buf.String())), nil
}

// Sanitize cleans markup fetched from the server before it is shown or
// re-submitted. Server content is trusted less than it should be.
func Sanitize(markup string) string {
	return strings.TrimSpace(sanitizer.Sanitize(markup))
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blankPattern = regexp.MustCompile(`[ \t]+`)
)

// Strip reduces markup to plain text for table cells and previews.
func Strip(markup string) string {
	s := strings.NewReplacer("</p>", "\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(markup)
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = blankPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
