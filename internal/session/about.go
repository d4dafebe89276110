/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"fmt"
	"log/slog"

	"gositeadmin/internal/api"
	"gositeadmin/internal/domain"
	applog "gositeadmin/internal/log"
)

// AboutBackend is the slice of the API the about session needs.
type AboutBackend interface {
	UpdateAbout(ctx context.Context, a api.AboutUpdate) error
}

// AboutEditor edits the singleton about-us section: the text and an optional
// background image replaced only when dirty.
type AboutEditor struct {
	gate
	Text            string
	Background      ImageRef
	backgroundDirty bool
	log             *slog.Logger
}

// EditAbout opens a session seeded from the fetched section.
func EditAbout(a domain.About) *AboutEditor {
	return &AboutEditor{
		Text:       a.Text,
		Background: RemoteURL(a.BackgroundImage),
		log:        applog.WithComponent("session"),
	}
}

// SetBackground installs already-read bytes as the new background image.
func (e *AboutEditor) SetBackground(data []byte, name string) {
	e.Background = PendingUpload(data, name)
	e.backgroundDirty = true
}

// SelectBackground reads the picked file immediately and marks it dirty.
func (e *AboutEditor) SelectBackground(path string) error {
	ref, err := readFileRef(path)
	if err != nil {
		e.log.Error("background selection failed", slog.Any("err", err))
		return err
	}
	data, name, _ := ref.File()
	e.SetBackground(data, name)
	return nil
}

// Submit rewrites the section. The text always goes out; the background image
// part only when a new file was picked this session.
func (e *AboutEditor) Submit(ctx context.Context, be AboutBackend) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	up := api.AboutUpdate{Text: e.Text}
	if e.backgroundDirty {
		if data, name, ok := e.Background.File(); ok {
			up.BackgroundImage = &api.FilePart{Name: name, Data: data}
		}
	}
	if err := be.UpdateAbout(ctx, up); err != nil {
		e.log.Error("about update failed", slog.Any("err", err))
		return fmt.Errorf("update about section: %w", err)
	}
	e.backgroundDirty = false
	return nil
}
