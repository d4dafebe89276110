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
	"sync"

	"gositeadmin/internal/api"
	"gositeadmin/internal/domain"
	"gositeadmin/internal/gallery"
	applog "gositeadmin/internal/log"
)

// ProjectBackend is the slice of the API a project edit session needs.
type ProjectBackend interface {
	CreateProject(ctx context.Context, p api.ProjectUpsert) (domain.Project, error)
	UpdateProject(ctx context.Context, id int64, p api.ProjectUpsert) error
	AddGalleryImage(ctx context.Context, projectID int64, img api.FilePart) (domain.GalleryImage, error)
	CreateDataRow(ctx context.Context, projectID int64, key, value string) (domain.DataRow, error)
	UpdateDataRow(ctx context.Context, projectID int64, rowID, key, value string) error
	DeleteDataRow(ctx context.Context, projectID int64, rowID string) error
}

// ProjectForm holds the editable scalar fields of a project session.
type ProjectForm struct {
	Title       string
	Description string // markup, rendered by the UI before display
	Tags        []string
	Cover       ImageRef
}

// Editor is one project edit session: form state, data rows with their opening
// snapshot, the gallery board and the submit gate. It is bound to the UI
// goroutine except for Submit, which may be called from a worker.
type Editor struct {
	gate
	projectID    int64 // 0 until a create submit succeeds
	Form         ProjectForm
	Rows         []domain.DataRow
	Board        *gallery.Board
	snapshot     []domain.DataRow
	coverDirty   bool
	galleryDirty bool
	log          *slog.Logger
}

// NewProjectEditor opens a blank create session.
func NewProjectEditor() *Editor {
	return &Editor{
		Board: gallery.NewBoard(0, nil),
		log:   applog.WithComponent("session"),
	}
}

// EditProject opens an update session seeded from a fetched project. A legacy
// single category is folded into the tag list when no explicit tags exist, the
// persisted rows are snapshotted for diffing, and the gallery is seeded with
// contiguous orders. All dirty flags start clear.
func EditProject(p domain.Project) *Editor {
	e := &Editor{
		projectID: p.ID,
		Form: ProjectForm{
			Title:       p.Title,
			Description: p.Description,
			Tags:        p.EffectiveTags(),
			Cover:       RemoteURL(p.Image),
		},
		Rows:     append([]domain.DataRow(nil), p.Data...),
		snapshot: snapshotRows(p.Data),
		log:      applog.WithComponent("session"),
	}
	e.Board = gallery.NewBoard(p.ID, nil)
	e.Board.SetImages(gallery.SeedFromProject(p))
	return e
}

// ProjectID returns the server ID, 0 for an unsubmitted create session.
func (e *Editor) ProjectID() int64 { return e.projectID }

// CoverDirty reports whether the cover was replaced this session.
func (e *Editor) CoverDirty() bool { return e.coverDirty }

// GalleryDirty reports whether local images were added this session.
func (e *Editor) GalleryDirty() bool { return e.galleryDirty }

// SetCover installs already-read bytes as the new cover and marks it dirty.
func (e *Editor) SetCover(data []byte, name string) {
	e.Form.Cover = PendingUpload(data, name)
	e.coverDirty = true
}

// SelectCover reads the picked file into memory immediately and marks the
// cover dirty. A read failure changes nothing.
func (e *Editor) SelectCover(path string) error {
	ref, err := readFileRef(path)
	if err != nil {
		e.log.Error("cover selection failed", slog.Any("err", err))
		return err
	}
	data, name, _ := ref.File()
	e.SetCover(data, name)
	return nil
}

// SelectGallery reads all picked files concurrently and appends them to the
// board as pending entries. Any read failure aborts the whole selection with
// no state change.
func (e *Editor) SelectGallery(paths []string) error {
	refs, err := readFileRefs(paths)
	if err != nil {
		e.log.Error("gallery selection failed", slog.Any("err", err))
		return err
	}
	imgs := make([]gallery.Image, 0, len(refs))
	for _, r := range refs {
		data, name, _ := r.File()
		imgs = append(imgs, gallery.Image{Data: data, Name: name})
	}
	e.Board.AddPending(imgs)
	e.galleryDirty = true
	return nil
}

// AddRow appends a blank editable row.
func (e *Editor) AddRow() {
	e.Rows = append(e.Rows, domain.DataRow{})
}

// RemoveRow deletes the row at idx. Unsaved rows vanish locally; persisted
// rows are deleted on the server first and kept on failure.
func (e *Editor) RemoveRow(ctx context.Context, idx int, be ProjectBackend) error {
	if idx < 0 || idx >= len(e.Rows) {
		return fmt.Errorf("row index %d out of range", idx)
	}
	row := e.Rows[idx]
	if row.ID != "" {
		if err := be.DeleteDataRow(ctx, e.projectID, row.ID); err != nil {
			e.log.Error("row delete failed", slog.String("row_id", row.ID), slog.Any("err", err))
			return fmt.Errorf("delete row %s: %w", row.ID, err)
		}
		for i, s := range e.snapshot {
			if s.ID == row.ID {
				e.snapshot = append(e.snapshot[:i], e.snapshot[i+1:]...)
				break
			}
		}
	}
	e.Rows = append(e.Rows[:idx], e.Rows[idx+1:]...)
	return nil
}

// Result reports what a submit accomplished beyond its error.
type Result struct {
	Created       *domain.Project // set when a create submit succeeded
	FailedUploads int             // gallery uploads that failed; the rest went through
}

// Submit pushes the session to the server. At most one submit per editor is in
// flight; concurrent calls fail fast with ErrSubmitInFlight.
//
// Update sessions send the multipart partial update first and abort everything
// on its failure. Then the data-row diff runs (creates and updates), and
// finally pending gallery images upload independently of each other: every one
// is attempted, failures are counted into the result, and the submit still
// succeeds.
//
// Create sessions create the project first; with the new ID in hand all
// pending gallery images upload (same counting) and all non-blank rows are
// created. Upload failures never block row creation.
func (e *Editor) Submit(ctx context.Context, be ProjectBackend) (Result, error) {
	if err := e.begin(); err != nil {
		return Result{}, err
	}
	defer e.end()

	if e.projectID > 0 {
		return e.submitUpdate(ctx, be)
	}
	return e.submitCreate(ctx, be)
}

func (e *Editor) upsert() api.ProjectUpsert {
	up := api.ProjectUpsert{
		Title:       e.Form.Title,
		Description: e.Form.Description,
		Tags:        e.Form.Tags,
	}
	if e.coverDirty {
		if data, name, ok := e.Form.Cover.File(); ok {
			up.Image = &api.FilePart{Name: name, Data: data}
		}
	}
	return up
}

func (e *Editor) submitUpdate(ctx context.Context, be ProjectBackend) (Result, error) {
	if err := be.UpdateProject(ctx, e.projectID, e.upsert()); err != nil {
		e.log.Error("project update failed", slog.Int64("project_id", e.projectID), slog.Any("err", err))
		return Result{}, fmt.Errorf("update project: %w", err)
	}

	diff := DiffRows(e.Rows, e.snapshot)
	for _, r := range diff.Creates {
		created, err := be.CreateDataRow(ctx, e.projectID, r.Key, r.Value)
		if err != nil {
			return Result{}, fmt.Errorf("create row %q: %w", r.Key, err)
		}
		e.adoptRowID(r, created.ID)
	}
	for _, r := range diff.Updates {
		if err := be.UpdateDataRow(ctx, e.projectID, r.ID, r.Key, r.Value); err != nil {
			return Result{}, fmt.Errorf("update row %q: %w", r.Key, err)
		}
	}

	var failed int
	if pending := e.Board.Pending(); e.galleryDirty && len(pending) > 0 {
		failed = e.uploadPending(ctx, be, e.projectID, pending)
	}
	e.settle()
	return Result{FailedUploads: failed}, nil
}

func (e *Editor) submitCreate(ctx context.Context, be ProjectBackend) (Result, error) {
	created, err := be.CreateProject(ctx, e.upsert())
	if err != nil {
		e.log.Error("project create failed", slog.Any("err", err))
		return Result{}, fmt.Errorf("create project: %w", err)
	}
	e.projectID = created.ID

	var failed int
	if created.ID > 0 {
		if pending := e.Board.Pending(); len(pending) > 0 {
			failed = e.uploadPending(ctx, be, created.ID, pending)
		}
		for _, r := range e.Rows {
			if r.Blank() {
				continue
			}
			row, err := be.CreateDataRow(ctx, created.ID, r.Key, r.Value)
			if err != nil {
				return Result{Created: &created, FailedUploads: failed}, fmt.Errorf("create row %q: %w", r.Key, err)
			}
			e.adoptRowID(r, row.ID)
		}
	}
	e.settle()
	return Result{Created: &created, FailedUploads: failed}, nil
}

// uploadPending pushes every pending gallery image, each on its own goroutine.
// All of them are attempted regardless of individual failures. Successful
// uploads replace their pending board entries with the persisted server image
// so a later submit does not send them again; failures stay pending and feed
// one aggregate warning upstream.
func (e *Editor) uploadPending(ctx context.Context, be ProjectBackend, projectID int64, pending []gallery.Image) int {
	var wg sync.WaitGroup
	uploaded := make([]*domain.GalleryImage, len(pending))
	for i, im := range pending {
		wg.Add(1)
		go func(i int, im gallery.Image) {
			defer wg.Done()
			g, err := be.AddGalleryImage(ctx, projectID, api.FilePart{Name: im.Name, Data: im.Data})
			if err != nil {
				e.log.Warn("gallery upload failed", slog.String("name", im.Name), slog.Any("err", err))
				return
			}
			uploaded[i] = &g
		}(i, im)
	}
	wg.Wait()
	e.Board.AdoptUploaded(uploaded)
	failed := 0
	for _, g := range uploaded {
		if g == nil {
			failed++
		}
	}
	if failed > 0 {
		e.log.Warn("gallery uploads incomplete", slog.Int("failed", failed), slog.Int("total", len(pending)))
	}
	return failed
}

// adoptRowID writes the server ID back into the matching local row so a second
// submit diffs against it instead of recreating it.
func (e *Editor) adoptRowID(r domain.DataRow, id string) {
	for i := range e.Rows {
		if e.Rows[i].ID == "" && e.Rows[i].Key == r.Key && e.Rows[i].Value == r.Value {
			e.Rows[i].ID = id
			break
		}
	}
}

// settle resets dirty tracking after a successful submit and re-snapshots the
// rows so the next submit diffs against the server's new state. Pending
// entries left behind by failed uploads keep the gallery dirty for a retry.
func (e *Editor) settle() {
	e.coverDirty = false
	e.galleryDirty = len(e.Board.Pending()) > 0
	e.snapshot = snapshotRows(e.Rows)
}
