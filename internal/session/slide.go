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

// SlideBackend is the slice of the API a slide edit session needs.
type SlideBackend interface {
	CreateSlide(ctx context.Context, s api.SlideUpsert) (domain.Slide, error)
	UpdateSlide(ctx context.Context, id int64, s api.SlideUpsert) error
}

// SlideEditor is one slide edit session: a title, an image reference and the
// submit gate. Slides carry no rows or gallery.
type SlideEditor struct {
	gate
	slideID    int64
	Title      string
	Image      ImageRef
	imageDirty bool
	log        *slog.Logger
}

// NewSlideEditor opens a blank create session.
func NewSlideEditor() *SlideEditor {
	return &SlideEditor{log: applog.WithComponent("session")}
}

// EditSlide opens an update session seeded from a fetched slide.
func EditSlide(s domain.Slide) *SlideEditor {
	return &SlideEditor{
		slideID: s.ID,
		Title:   s.Title,
		Image:   RemoteURL(s.Image),
		log:     applog.WithComponent("session"),
	}
}

// SlideID returns the server ID, 0 for an unsubmitted create session.
func (e *SlideEditor) SlideID() int64 { return e.slideID }

// SetImage installs already-read bytes as the new slide image.
func (e *SlideEditor) SetImage(data []byte, name string) {
	e.Image = PendingUpload(data, name)
	e.imageDirty = true
}

// SelectImage reads the picked file immediately and marks the image dirty.
func (e *SlideEditor) SelectImage(path string) error {
	ref, err := readFileRef(path)
	if err != nil {
		e.log.Error("slide image selection failed", slog.Any("err", err))
		return err
	}
	data, name, _ := ref.File()
	e.SetImage(data, name)
	return nil
}

func (e *SlideEditor) upsert() api.SlideUpsert {
	up := api.SlideUpsert{Title: e.Title}
	if e.imageDirty {
		if data, name, ok := e.Image.File(); ok {
			up.Image = &api.FilePart{Name: name, Data: data}
		}
	}
	return up
}

// Submit pushes the slide to the server: create for new sessions, full PUT
// replace for existing ones. One in-flight submit per editor.
func (e *SlideEditor) Submit(ctx context.Context, be SlideBackend) (*domain.Slide, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if e.slideID > 0 {
		if err := be.UpdateSlide(ctx, e.slideID, e.upsert()); err != nil {
			e.log.Error("slide update failed", slog.Int64("slide_id", e.slideID), slog.Any("err", err))
			return nil, fmt.Errorf("update slide: %w", err)
		}
		e.imageDirty = false
		return nil, nil
	}
	created, err := be.CreateSlide(ctx, e.upsert())
	if err != nil {
		e.log.Error("slide create failed", slog.Any("err", err))
		return nil, fmt.Errorf("create slide: %w", err)
	}
	e.slideID = created.ID
	e.imageDirty = false
	return &created, nil
}
