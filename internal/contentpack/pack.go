/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package contentpack exports the whole site's content into one
// schema-validated JSON file and imports such files back, so content can be
// moved between backends or kept as a backup. Image references travel as
// server URLs; binary image data is not part of a pack.
package contentpack

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gositeadmin/internal/api"
	"gositeadmin/internal/domain"
	applog "gositeadmin/internal/log"
	"gositeadmin/internal/version"
)

//go:embed pack.schema.json
var schemaJSON []byte

const packVersion = 1

// Pack is the on-disk content pack format.
type Pack struct {
	PackVersion int           `json:"pack_version"`
	CreatedAt   string        `json:"created_at"`
	App         string        `json:"app,omitempty"`
	Projects    []PackProject `json:"projects"`
	Slides      []PackSlide   `json:"slides"`
	About       PackAbout     `json:"about"`
}

type PackProject struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Data        []PackRow `json:"data,omitempty"`
	Gallery     []string  `json:"gallery,omitempty"`
}

type PackRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PackSlide struct {
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

type PackAbout struct {
	Text            string `json:"text"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// Lister is the read slice of the API the export needs.
type Lister interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListSlides(ctx context.Context) ([]domain.Slide, error)
	GetAbout(ctx context.Context) (domain.About, error)
}

// Build assembles a pack from the live backend.
func Build(ctx context.Context, be Lister) (Pack, error) {
	l := applog.WithOperation(applog.WithComponent("contentpack"), "build")
	projects, err := be.ListProjects(ctx)
	if err != nil {
		return Pack{}, fmt.Errorf("fetch projects: %w", err)
	}
	slides, err := be.ListSlides(ctx)
	if err != nil {
		return Pack{}, fmt.Errorf("fetch slides: %w", err)
	}
	about, err := be.GetAbout(ctx)
	if err != nil {
		return Pack{}, fmt.Errorf("fetch about: %w", err)
	}

	p := Pack{
		PackVersion: packVersion,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		App:         "gositeadmin " + version.String(),
		Projects:    make([]PackProject, 0, len(projects)),
		Slides:      make([]PackSlide, 0, len(slides)),
		About:       PackAbout{Text: about.Text, BackgroundImage: about.BackgroundImage},
	}
	for _, pr := range projects {
		pp := PackProject{
			Title:       pr.Title,
			Description: pr.Description,
			Image:       pr.Image,
			Tags:        pr.EffectiveTags(),
		}
		for _, r := range pr.Data {
			if r.Blank() {
				continue
			}
			pp.Data = append(pp.Data, PackRow{Key: r.Key, Value: r.Value})
		}
		for _, g := range pr.Gallery {
			pp.Gallery = append(pp.Gallery, g.Image)
		}
		p.Projects = append(p.Projects, pp)
	}
	for _, s := range slides {
		p.Slides = append(p.Slides, PackSlide{Title: s.Title, Image: s.Image})
	}
	l.Info("pack built", slog.Int("projects", len(p.Projects)), slog.Int("slides", len(p.Slides)))
	return p, nil
}

// Export writes a validated pack file.
func Export(ctx context.Context, be Lister, destPath string) error {
	if strings.TrimSpace(destPath) == "" {
		return errors.New("destination path is required")
	}
	p, err := Build(ctx, be)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	if err := Validate(data); err != nil {
		return fmt.Errorf("built pack failed validation: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("ensure pack dir: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("write pack: %w", err)
	}
	applog.WithComponent("contentpack").Info("pack exported", slog.String("path", destPath))
	return nil
}

// Validate checks raw pack bytes against the embedded schema. The first few
// violations are folded into the returned error.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for i, e := range result.Errors() {
		if i == 3 {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(result.Errors())-i))
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("pack invalid: %s", strings.Join(msgs, "; "))
}

// Load reads and validates a pack file.
func Load(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("read pack: %w", err)
	}
	if err := Validate(data); err != nil {
		return Pack{}, err
	}
	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return Pack{}, fmt.Errorf("decode pack: %w", err)
	}
	return p, nil
}

// Pusher is the write slice of the API the import needs.
type Pusher interface {
	CreateProject(ctx context.Context, p api.ProjectUpsert) (domain.Project, error)
	CreateDataRow(ctx context.Context, projectID int64, key, value string) (domain.DataRow, error)
	CreateSlide(ctx context.Context, s api.SlideUpsert) (domain.Slide, error)
	UpdateAbout(ctx context.Context, a api.AboutUpdate) error
}

// ImportStats summarizes what an Apply pushed.
type ImportStats struct {
	Projects int
	Rows     int
	Slides   int
}

// Apply pushes a loaded pack to the backend: every project with its rows, every
// slide, then the about text. Nothing is pushed before the pack validated, so a
// malformed file changes nothing. Gallery and image URLs are informational;
// binary uploads are out of a pack's reach.
func Apply(ctx context.Context, be Pusher, p Pack) (ImportStats, error) {
	l := applog.WithOperation(applog.WithComponent("contentpack"), "apply")
	var st ImportStats
	for _, pp := range p.Projects {
		created, err := be.CreateProject(ctx, api.ProjectUpsert{
			Title:       pp.Title,
			Description: pp.Description,
			Tags:        pp.Tags,
		})
		if err != nil {
			return st, fmt.Errorf("import project %q: %w", pp.Title, err)
		}
		st.Projects++
		for _, r := range pp.Data {
			if _, err := be.CreateDataRow(ctx, created.ID, r.Key, r.Value); err != nil {
				return st, fmt.Errorf("import row %q of %q: %w", r.Key, pp.Title, err)
			}
			st.Rows++
		}
	}
	for _, s := range p.Slides {
		if _, err := be.CreateSlide(ctx, api.SlideUpsert{Title: s.Title}); err != nil {
			return st, fmt.Errorf("import slide %q: %w", s.Title, err)
		}
		st.Slides++
	}
	if p.About.Text != "" {
		if err := be.UpdateAbout(ctx, api.AboutUpdate{Text: p.About.Text}); err != nil {
			return st, fmt.Errorf("import about: %w", err)
		}
	}
	l.Info("pack applied", slog.Int("projects", st.Projects), slog.Int("slides", st.Slides))
	return st, nil
}
