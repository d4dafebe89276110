/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gositeadmin/internal/domain"
)

type fakeLister struct {
	failProjects bool
}

func (f fakeLister) ListProjects(context.Context) ([]domain.Project, error) {
	if f.failProjects {
		return nil, errors.New("unreachable")
	}
	return []domain.Project{
		{
			ID: 1, Title: "Harbour", Description: "<p>Waterfront build</p>",
			Category: "architecture",
			Data:     []domain.DataRow{{ID: "a", Key: "client", Value: "Foko"}, {Key: "", Value: "blank"}},
			Gallery:  []domain.GalleryImage{{ID: 9, Image: "https://cdn/g.jpg"}},
		},
		{ID: 2, Title: "Untagged"},
	}, nil
}

func (fakeLister) ListSlides(context.Context) ([]domain.Slide, error) {
	return []domain.Slide{{ID: 5, Title: "Hero"}}, nil
}

func TestWriteInventoryProducesPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "inventory.pdf")
	if err := WriteInventory(context.Background(), fakeLister{}, out); err != nil {
		t.Fatalf("WriteInventory: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header")
	}
	if len(data) < 500 {
		t.Fatalf("report suspiciously small: %d bytes", len(data))
	}
}

func TestWriteInventoryFailsWithoutPath(t *testing.T) {
	if err := WriteInventory(context.Background(), fakeLister{}, "  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestWriteInventoryPropagatesFetchError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "inventory.pdf")
	if err := WriteInventory(context.Background(), fakeLister{failProjects: true}, out); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("report file created despite fetch failure")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Fatalf("truncate = %q", got)
	}
	// never cut in the middle of a multibyte rune
	if got := truncate("Straße und Höfe", 5); got != "Stra..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("ääää", 5); got != "ää..." {
		t.Fatalf("truncate = %q", got)
	}
}
