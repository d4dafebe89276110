/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package report renders a PDF inventory of the site's content: every project
// with its tags, row and gallery counts, plus the slide list. Meant for
// handing to editors who do not use the admin tool.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"gositeadmin/internal/domain"
	applog "gositeadmin/internal/log"
	"gositeadmin/internal/richtext"
	"gositeadmin/internal/version"
)

// Lister is the read slice of the API the report needs.
type Lister interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListSlides(ctx context.Context) ([]domain.Slide, error)
}

// WriteInventory fetches the current content and writes the inventory PDF to
// outPath.
func WriteInventory(ctx context.Context, be Lister, outPath string) error {
	if strings.TrimSpace(outPath) == "" {
		return errors.New("output path is required")
	}
	l := applog.WithOperation(applog.WithComponent("report"), "inventory")
	projects, err := be.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	slides, err := be.ListSlides(ctx)
	if err != nil {
		return fmt.Errorf("fetch slides: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Site content inventory", false)
	pdf.SetAuthor("gositeadmin "+version.String(), false)
	pdf.AddPage()

	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Site content inventory")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s | %d projects, %d slides",
		time.Now().Format("2006-01-02 15:04"), len(projects), len(slides)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Projects")
	pdf.Ln(8)
	for _, p := range projects {
		writeProject(pdf, p)
	}
	if len(projects) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "none")
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Slides")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range slides {
		pdf.Cell(0, 6, fmt.Sprintf("%s (#%d)", s.Title, s.ID))
		pdf.Ln(6)
	}
	if len(slides) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "none")
		pdf.Ln(6)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		l.Error("pdf write failed", slog.Any("err", err))
		return fmt.Errorf("write report: %w", err)
	}
	l.Info("inventory written", slog.String("path", outPath), slog.Int("projects", len(projects)))
	return nil
}

func writeProject(pdf *gofpdf.Fpdf, p domain.Project) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s (#%d)", p.Title, p.ID))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)

	tags := strings.Join(p.EffectiveTags(), ", ")
	if tags == "" {
		tags = "untagged"
	}
	rows := 0
	for _, r := range p.Data {
		if !r.Blank() {
			rows++
		}
	}
	pdf.Cell(0, 5, fmt.Sprintf("Tags: %s | Data rows: %d | Gallery images: %d", tags, rows, len(p.Gallery)))
	pdf.Ln(5)

	if desc := richtext.Strip(p.Description); desc != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 4.5, truncate(desc, 300), "", "L", false)
	}
	pdf.Ln(3)
}

// truncate cuts s to at most n bytes without splitting a rune at the cut.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
