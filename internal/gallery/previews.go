/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	applog "gositeadmin/internal/log"
)

// previewMaxDim bounds the longer edge of generated preview thumbnails.
const previewMaxDim = 256

// ErrLeaseReleased is returned when a preview lease is released twice or its
// path is read after release.
var ErrLeaseReleased = errors.New("preview lease already released")

// Lease is a temporary on-disk preview backing one pending image. It must be
// released exactly once; the file is removed on release.
type Lease struct {
	path     string
	released bool
	owner    *PreviewSet
}

// Path returns the preview file path, or an error after release.
func (l *Lease) Path() (string, error) {
	if l.released {
		return "", ErrLeaseReleased
	}
	return l.path, nil
}

// Release removes the backing file. A second release is an error.
func (l *Lease) Release() error {
	if l.released {
		return ErrLeaseReleased
	}
	l.released = true
	if l.owner != nil {
		l.owner.live--
	}
	return os.Remove(l.path)
}

// PreviewSet derives display sources for a board's images and owns the
// temporary preview files for pending entries. At most one live lease exists
// per rendered index; Refresh releases all stale leases before creating new
// ones, and Close releases everything.
type PreviewSet struct {
	dir    string
	leases []*Lease
	live   int
	log    *slog.Logger
}

// NewPreviewSet creates a set writing previews under dir; an empty dir uses a
// fresh directory in the system temp location.
func NewPreviewSet(dir string) (*PreviewSet, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", "gositeadmin-previews-")
		if err != nil {
			return nil, err
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &PreviewSet{dir: dir, log: applog.WithComponent("previews")}, nil
}

// Source is the display source for one image entry: a server URL, a local
// preview path, or empty for a placeholder.
type Source struct {
	URL  string // non-empty for persisted/external images
	Path string // non-empty for pending images with a live lease
}

// Empty reports whether the entry has nothing to display.
func (s Source) Empty() bool { return s.URL == "" && s.Path == "" }

// Refresh recomputes display sources for the collection. Every previously
// created lease is released first, so a re-render never leaks and never holds
// two leases for one index. Entries whose bytes cannot be decoded still get a
// raw-copy preview file; only entries with neither URL nor data come back
// empty.
func (ps *PreviewSet) Refresh(imgs []Image) ([]Source, error) {
	ps.releaseAll()
	out := make([]Source, len(imgs))
	for i, im := range imgs {
		switch {
		case im.URL != "":
			out[i] = Source{URL: im.URL}
		case len(im.Data) > 0:
			lease, err := ps.lease(im.Data)
			if err != nil {
				return out, fmt.Errorf("preview for entry %d: %w", i, err)
			}
			p, _ := lease.Path()
			out[i] = Source{Path: p}
		default:
			out[i] = Source{}
		}
	}
	return out, nil
}

// Outstanding returns the number of live leases, for leak accounting.
func (ps *PreviewSet) Outstanding() int { return ps.live }

// Close releases all leases and removes the preview directory.
func (ps *PreviewSet) Close() error {
	ps.releaseAll()
	return os.RemoveAll(ps.dir)
}

func (ps *PreviewSet) releaseAll() {
	for _, l := range ps.leases {
		if l.released {
			continue
		}
		if err := l.Release(); err != nil {
			ps.log.Warn("release preview", slog.Any("err", err))
		}
	}
	ps.leases = ps.leases[:0]
}

func (ps *PreviewSet) lease(data []byte) (*Lease, error) {
	path := filepath.Join(ps.dir, uuid.NewString()+".png")
	if err := os.WriteFile(path, thumbnail(data), 0o600); err != nil {
		return nil, err
	}
	l := &Lease{path: path, owner: ps}
	ps.leases = append(ps.leases, l)
	ps.live++
	return l, nil
}

// thumbnail downscales image bytes to previewMaxDim on the longer edge and
// re-encodes as PNG. Undecodable bytes are passed through untouched so the
// preview file still exists for the renderer to try.
func thumbnail(data []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= previewMaxDim && h <= previewMaxDim {
		return encodePNG(src, data)
	}
	scale := float64(previewMaxDim) / float64(max(w, h))
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return encodePNG(dst, data)
}

func encodePNG(img image.Image, fallback []byte) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fallback
	}
	return buf.Bytes()
}
