/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package gallery maintains the ordered image collection of a project edit
// session: persisted server images and pending local uploads side by side,
// with reorder, delete and preview lifecycle handling.
package gallery

import (
	"context"
	"fmt"
	"log/slog"

	"gositeadmin/internal/domain"
	applog "gositeadmin/internal/log"
)

// Image is one entry of a gallery being edited. An image is persisted when it
// has a server ID (and a URL); pending entries carry raw bytes awaiting
// upload. Order is 1-based and contiguous within one board.
type Image struct {
	ID    int64  // >0 for persisted images
	URL   string // server URL for persisted images
	Data  []byte // raw bytes for pending images
	Name  string // original filename of a pending image
	Order int
}

// Persisted reports whether the image exists on the server.
func (im Image) Persisted() bool { return im.ID > 0 }

// Remover issues the server-side delete for one persisted gallery image.
type Remover interface {
	DeleteGalleryImage(ctx context.Context, projectID, imageID int64) error
}

// SeedFromProject converts a fetched project's gallery into board images,
// assigning sequential orders where the server left them unset.
func SeedFromProject(p domain.Project) []Image {
	imgs := make([]Image, 0, len(p.Gallery))
	for _, g := range p.Gallery {
		imgs = append(imgs, Image{ID: g.ID, URL: g.Image, Order: g.Order})
	}
	imgs, _ = Normalize(imgs)
	return imgs
}

// Normalize assigns every entry its 1-based position as Order. It reports
// whether anything changed; reapplying it to normalized input is a no-op, so
// change propagation cannot loop.
func Normalize(imgs []Image) ([]Image, bool) {
	changed := false
	out := make([]Image, len(imgs))
	copy(out, imgs)
	for i := range out {
		want := i + 1
		if out[i].Order != want {
			out[i].Order = want
			changed = true
		}
	}
	return out, changed
}

// Board owns the ordered image slice for one edit session. It is confined to
// the UI goroutine; no locking.
type Board struct {
	projectID int64 // 0 while creating a new project
	images    []Image
	onChange  func([]Image) // fired after every effective mutation
	log       *slog.Logger
}

// NewBoard creates a board bound to a project (projectID 0 for create mode).
// onChange receives a copy of the collection after each effective mutation and
// may be nil.
func NewBoard(projectID int64, onChange func([]Image)) *Board {
	return &Board{
		projectID: projectID,
		onChange:  onChange,
		log:       applog.WithComponent("gallery"),
	}
}

// SetImages binds a new collection, normalizing orders. The corrected
// collection is propagated at most once per call.
func (b *Board) SetImages(imgs []Image) {
	norm, _ := Normalize(imgs)
	b.images = norm
	b.notify()
}

// Images returns a copy of the current collection.
func (b *Board) Images() []Image {
	return append([]Image(nil), b.images...)
}

// Len returns the number of entries.
func (b *Board) Len() int { return len(b.images) }

// Pending returns the entries not yet uploaded, in display order.
func (b *Board) Pending() []Image {
	var out []Image
	for _, im := range b.images {
		if !im.Persisted() {
			out = append(out, im)
		}
	}
	return out
}

// AddPending appends newly selected local images after the existing entries,
// leaving existing entries' identities intact, and renumbers.
func (b *Board) AddPending(imgs []Image) {
	if len(imgs) == 0 {
		return
	}
	b.images = append(b.images, imgs...)
	b.images, _ = Normalize(b.images)
	b.notify()
}

// AdoptUploaded replaces pending entries with their persisted server
// counterparts after an upload round. uploaded is aligned with the pending
// entries in display order; a nil slot means that upload failed and the entry
// stays pending for a retry. Display order is untouched.
func (b *Board) AdoptUploaded(uploaded []*domain.GalleryImage) {
	changed := false
	slot := 0
	for i := range b.images {
		if b.images[i].Persisted() {
			continue
		}
		if slot >= len(uploaded) {
			break
		}
		if g := uploaded[slot]; g != nil {
			b.images[i] = Image{ID: g.ID, URL: g.Image, Order: b.images[i].Order}
			changed = true
		}
		slot++
	}
	if changed {
		b.notify()
	}
}

// Move reorders the entry at src to dst (both 0-based display positions) and
// renumbers the whole collection from 1. It reports whether anything moved;
// src==dst or an out-of-range dst (cancelled drag) is a no-op.
func (b *Board) Move(src, dst int) bool {
	if src == dst || src < 0 || src >= len(b.images) || dst < 0 || dst >= len(b.images) {
		return false
	}
	moved := b.images[src]
	rest := append(append([]Image(nil), b.images[:src]...), b.images[src+1:]...)
	out := append(append(append([]Image(nil), rest[:dst]...), moved), rest[dst:]...)
	b.images, _ = Normalize(out)
	b.log.Debug("gallery reorder", slog.Int("from", src), slog.Int("to", dst))
	b.notify()
	return true
}

// Remove deletes the entry at idx. Pending entries are removed locally with no
// network call. Persisted entries are deleted on the server first; the local
// collection is only touched after that call succeeds, so a failure leaves UI
// and server consistent. Remaining entries are renumbered from 1.
func (b *Board) Remove(ctx context.Context, idx int, rm Remover) error {
	if idx < 0 || idx >= len(b.images) {
		return fmt.Errorf("gallery index %d out of range", idx)
	}
	im := b.images[idx]
	if im.Persisted() {
		if b.projectID == 0 {
			return fmt.Errorf("persisted image %d without a project", im.ID)
		}
		if rm == nil {
			return fmt.Errorf("no remover for persisted image %d", im.ID)
		}
		if err := rm.DeleteGalleryImage(ctx, b.projectID, im.ID); err != nil {
			b.log.Error("gallery delete failed", slog.Int64("image_id", im.ID), slog.Any("err", err))
			return fmt.Errorf("delete gallery image %d: %w", im.ID, err)
		}
		b.log.Info("gallery image deleted", slog.Int64("image_id", im.ID))
	}
	b.images = append(b.images[:idx], b.images[idx+1:]...)
	b.images, _ = Normalize(b.images)
	b.notify()
	return nil
}

func (b *Board) notify() {
	if b.onChange != nil {
		b.onChange(b.Images())
	}
}
