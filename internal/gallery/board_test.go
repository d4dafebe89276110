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
	"context"
	"errors"
	"fmt"
	"testing"

	"gositeadmin/internal/domain"
)

func checkContiguous(t *testing.T, imgs []Image) {
	t.Helper()
	for i, im := range imgs {
		if im.Order != i+1 {
			t.Fatalf("order at %d = %d, want %d (%+v)", i, im.Order, i+1, imgs)
		}
	}
}

func persisted(id int64) Image { return Image{ID: id, URL: fmt.Sprintf("https://cdn/img/%d.jpg", id)} }
func pending(name string) Image {
	return Image{Data: []byte{0x01, 0x02}, Name: name}
}

func TestNormalizeAssignsAndIsIdempotent(t *testing.T) {
	imgs := []Image{persisted(1), pending("a.png"), persisted(2)}
	once, changed := Normalize(imgs)
	if !changed {
		t.Fatalf("expected change on unordered input")
	}
	checkContiguous(t, once)

	twice, changed := Normalize(once)
	if changed {
		t.Fatalf("Normalize not idempotent")
	}
	checkContiguous(t, twice)
}

func TestMoveKeepsContiguousOrderAcrossSequences(t *testing.T) {
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(1), persisted(2), pending("a"), pending("b"), persisted(3)})

	moves := [][2]int{{0, 4}, {3, 0}, {2, 2}, {4, 1}, {1, 3}}
	for _, m := range moves {
		b.Move(m[0], m[1])
		if b.Len() != 5 {
			t.Fatalf("length changed by move: %d", b.Len())
		}
		checkContiguous(t, b.Images())
	}
}

func TestAdoptUploadedReplacesPendingInPlace(t *testing.T) {
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(31), pending("a.png"), pending("b.png")})

	b.AdoptUploaded([]*domain.GalleryImage{
		{ID: 61, Image: "https://cdn/img/61.jpg"},
		nil,
	})
	imgs := b.Images()
	if imgs[0].ID != 31 {
		t.Fatalf("persisted entry disturbed: %+v", imgs[0])
	}
	if imgs[1].ID != 61 || imgs[1].URL != "https://cdn/img/61.jpg" || imgs[1].Data != nil {
		t.Fatalf("uploaded entry not adopted: %+v", imgs[1])
	}
	if imgs[2].Persisted() || imgs[2].Name != "b.png" {
		t.Fatalf("failed entry no longer pending: %+v", imgs[2])
	}
	checkContiguous(t, imgs)
	if p := b.Pending(); len(p) != 1 || p[0].Name != "b.png" {
		t.Fatalf("pending after adoption = %+v", p)
	}
}

func TestMoveNoOpOnInvalidDestination(t *testing.T) {
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(1), persisted(2)})
	before := b.Images()

	if b.Move(0, 0) {
		t.Fatalf("src==dst should be a no-op")
	}
	if b.Move(0, -1) || b.Move(0, 5) || b.Move(-1, 0) {
		t.Fatalf("out-of-range move should be a no-op")
	}
	after := b.Images()
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("collection changed by no-op move")
		}
	}
}

func TestMoveRelocatesEntry(t *testing.T) {
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(1), persisted(2), persisted(3)})
	if !b.Move(0, 2) {
		t.Fatalf("move reported no-op")
	}
	got := b.Images()
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Fatalf("unexpected order after move: %+v", got)
	}
	checkContiguous(t, got)
}

type fakeRemover struct {
	calls []string
	err   error
}

func (f *fakeRemover) DeleteGalleryImage(_ context.Context, projectID, imageID int64) error {
	f.calls = append(f.calls, fmt.Sprintf("%d/%d", projectID, imageID))
	return f.err
}

func TestRemovePendingIsLocalOnly(t *testing.T) {
	rm := &fakeRemover{}
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(1), pending("a"), persisted(2)})

	if err := b.Remove(context.Background(), 1, rm); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(rm.calls) != 0 {
		t.Fatalf("pending removal made %d network calls", len(rm.calls))
	}
	got := b.Images()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected collection: %+v", got)
	}
	checkContiguous(t, got)
}

func TestRemovePersistedCallsServerOnce(t *testing.T) {
	rm := &fakeRemover{}
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(10), persisted(20), persisted(30)})

	if err := b.Remove(context.Background(), 1, rm); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(rm.calls) != 1 || rm.calls[0] != "7/20" {
		t.Fatalf("server calls = %v, want exactly one to 7/20", rm.calls)
	}
	got := b.Images()
	if len(got) != 2 || got[0].ID != 10 || got[1].ID != 30 {
		t.Fatalf("unexpected collection: %+v", got)
	}
	checkContiguous(t, got)
}

func TestRemovePersistedKeepsEntryOnServerFailure(t *testing.T) {
	rm := &fakeRemover{err: errors.New("boom")}
	b := NewBoard(7, nil)
	b.SetImages([]Image{persisted(10), persisted(20)})

	if err := b.Remove(context.Background(), 0, rm); err == nil {
		t.Fatalf("expected error from failed server delete")
	}
	if b.Len() != 2 {
		t.Fatalf("local list changed despite server failure: %+v", b.Images())
	}
	// other entries are unaffected; the user may retry
	rm.err = nil
	if err := b.Remove(context.Background(), 0, rm); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if b.Len() != 1 || b.Images()[0].ID != 20 {
		t.Fatalf("retry did not remove entry: %+v", b.Images())
	}
}

func TestAddPendingAppendsAndKeepsIdentities(t *testing.T) {
	b := NewBoard(0, nil)
	b.SetImages([]Image{pending("a"), pending("b"), pending("c")})

	b.AddPending([]Image{pending("d"), pending("e")})

	got := b.Images()
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if got[i].Name != want {
			t.Fatalf("entry %d = %q, want %q", i, got[i].Name, want)
		}
	}
	checkContiguous(t, got)
}

func TestSetImagesPropagatesCorrectionOnce(t *testing.T) {
	var notified int
	var last []Image
	b := NewBoard(7, func(imgs []Image) {
		notified++
		last = imgs
	})
	b.SetImages([]Image{persisted(1), persisted(2)})
	if notified != 1 {
		t.Fatalf("notified %d times, want 1", notified)
	}
	checkContiguous(t, last)
}

func TestSeedFromProject(t *testing.T) {
	p := domain.Project{ID: 7, Gallery: []domain.GalleryImage{
		{ID: 3, Image: "https://cdn/3.jpg"},
		{ID: 4, Image: "https://cdn/4.jpg"},
	}}
	imgs := SeedFromProject(p)
	if len(imgs) != 2 || !imgs[0].Persisted() || imgs[0].URL == "" {
		t.Fatalf("unexpected seed: %+v", imgs)
	}
	checkContiguous(t, imgs)
}
