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
	"image"
	"image/png"
	"os"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestRefreshDerivesSources(t *testing.T) {
	ps, err := NewPreviewSet(t.TempDir())
	if err != nil {
		t.Fatalf("NewPreviewSet: %v", err)
	}
	defer ps.Close()

	imgs := []Image{
		{ID: 1, URL: "https://cdn/1.jpg"},
		{Data: pngBytes(t, 8, 8), Name: "a.png"},
		{},
	}
	srcs, err := ps.Refresh(imgs)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if srcs[0].URL != "https://cdn/1.jpg" || srcs[0].Path != "" {
		t.Fatalf("persisted source: %+v", srcs[0])
	}
	if srcs[1].Path == "" {
		t.Fatalf("pending entry has no preview path")
	}
	if _, err := os.Stat(srcs[1].Path); err != nil {
		t.Fatalf("preview file missing: %v", err)
	}
	if !srcs[2].Empty() {
		t.Fatalf("empty entry should yield placeholder source: %+v", srcs[2])
	}
	if ps.Outstanding() != 1 {
		t.Fatalf("outstanding = %d, want 1", ps.Outstanding())
	}
}

func TestRefreshReleasesStaleLeases(t *testing.T) {
	ps, err := NewPreviewSet(t.TempDir())
	if err != nil {
		t.Fatalf("NewPreviewSet: %v", err)
	}
	defer ps.Close()

	imgs := []Image{{Data: pngBytes(t, 4, 4)}, {Data: pngBytes(t, 4, 4)}}
	first, err := ps.Refresh(imgs)
	if err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	if ps.Outstanding() != 2 {
		t.Fatalf("outstanding after first refresh = %d", ps.Outstanding())
	}

	second, err := ps.Refresh(imgs)
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if ps.Outstanding() != 2 {
		t.Fatalf("outstanding after second refresh = %d, want 2", ps.Outstanding())
	}
	for _, s := range first {
		if _, err := os.Stat(s.Path); !os.IsNotExist(err) {
			t.Fatalf("stale preview %s not removed", s.Path)
		}
	}
	for _, s := range second {
		if _, err := os.Stat(s.Path); err != nil {
			t.Fatalf("fresh preview %s missing: %v", s.Path, err)
		}
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	dir := t.TempDir() + "/previews"
	ps, err := NewPreviewSet(dir)
	if err != nil {
		t.Fatalf("NewPreviewSet: %v", err)
	}
	if _, err := ps.Refresh([]Image{{Data: pngBytes(t, 4, 4)}, {Data: pngBytes(t, 4, 4)}}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := ps.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ps.Outstanding() != 0 {
		t.Fatalf("outstanding after Close = %d", ps.Outstanding())
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("preview dir survived Close")
	}
}

func TestLeaseDoubleReleaseFails(t *testing.T) {
	ps, err := NewPreviewSet(t.TempDir())
	if err != nil {
		t.Fatalf("NewPreviewSet: %v", err)
	}
	defer ps.Close()

	l, err := ps.lease(pngBytes(t, 4, 4))
	if err != nil {
		t.Fatalf("lease: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := l.Release(); !errors.Is(err, ErrLeaseReleased) {
		t.Fatalf("second release err = %v, want ErrLeaseReleased", err)
	}
	if _, err := l.Path(); !errors.Is(err, ErrLeaseReleased) {
		t.Fatalf("Path after release err = %v, want ErrLeaseReleased", err)
	}
	if ps.Outstanding() != 0 {
		t.Fatalf("outstanding = %d after release", ps.Outstanding())
	}
}

func TestThumbnailDownscalesLargeImages(t *testing.T) {
	big := pngBytes(t, 1024, 512)
	out := thumbnail(big)
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > previewMaxDim || b.Dy() > previewMaxDim {
		t.Fatalf("thumbnail %dx%d exceeds %d", b.Dx(), b.Dy(), previewMaxDim)
	}
}

func TestThumbnailPassesThroughUndecodable(t *testing.T) {
	raw := []byte("not an image")
	if got := thumbnail(raw); !bytes.Equal(got, raw) {
		t.Fatalf("undecodable bytes were altered")
	}
}
