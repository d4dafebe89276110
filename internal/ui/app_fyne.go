//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"gositeadmin/internal/api"
	"gositeadmin/internal/config"
	"gositeadmin/internal/crash"
	"gositeadmin/internal/domain"
	"gositeadmin/internal/drafts"
	"gositeadmin/internal/gallery"
	applog "gositeadmin/internal/log"
	"gositeadmin/internal/richtext"
	"gositeadmin/internal/session"
	"gositeadmin/internal/telemetry"
	"gositeadmin/internal/version"
)

const requestTimeout = 20 * time.Second

// Run starts the Fyne-based admin client.
func Run() error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	var opts []api.Option
	if cfg.API.TimeoutMs > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(cfg.API.TimeoutMs)*time.Millisecond))
	}
	if cfg.API.TLSInsecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	client := api.NewClient(cfg.API.BaseURL, token, opts...)

	var store *drafts.Store
	if cfgPath, err := config.ConfigPath(); err == nil {
		if s, err := drafts.Open(filepath.Join(filepath.Dir(cfgPath), drafts.DBFileName)); err == nil {
			store = s
			defer store.Close()
		} else {
			l.Warn("draft store unavailable", slog.Any("err", err))
		}
	}

	// openEditor is whatever session the user currently has in a modal; the
	// crash handler flushes it to the draft store before the process dies.
	var openEditor *session.Editor
	defer crash.Recover("", func() error {
		if openEditor == nil || store == nil {
			return nil
		}
		data, err := EncodeProjectDraft(openEditor)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return store.Save(ctx, drafts.KindProject, openEditor.ProjectID(), data)
	})

	fyneApp := app.NewWithID("gositeadmin")
	w := fyneApp.NewWindow("Site Admin")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 800 {
		winW = 800
	}
	if winH < 560 {
		winH = 560
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))
	var saveAboutDraft func() // assigned once the about tab exists
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if saveAboutDraft != nil {
			saveAboutDraft()
		}
		w.Close()
	})

	status := widget.NewLabel("Ready")
	notify := func(msg string) {
		status.SetText(msg)
		l.Info("status", slog.String("msg", msg))
	}

	// ---- shared state ----
	var projects []domain.Project
	var slides []domain.Slide
	tagOptions := []string{}

	projectItems := []string{}
	projectList := widget.NewList(
		func() int { return len(projectItems) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(projectItems) {
				o.(*widget.Label).SetText(projectItems[i])
			}
		},
	)
	selectedProject := -1
	projectList.OnSelected = func(id widget.ListItemID) { selectedProject = int(id) }

	slideItems := []string{}
	slideList := widget.NewList(
		func() int { return len(slideItems) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(slideItems) {
				o.(*widget.Label).SetText(slideItems[i])
			}
		},
	)
	selectedSlide := -1
	slideList.OnSelected = func(id widget.ListItemID) { selectedSlide = int(id) }

	projectCountLabel := widget.NewLabel("-")
	slideCountLabel := widget.NewLabel("-")

	// ---- fetchers ----
	// List fetch failures notify once and leave the current list untouched.
	refreshProjects := func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			list, err := client.ListProjects(ctx)
			fyne.Do(func() {
				if err != nil {
					l.Error("project fetch failed", slog.Any("err", err))
					notify("Could not load projects.")
					return
				}
				projects = list
				projectItems = projectItems[:0]
				tags := map[string]bool{}
				for _, p := range projects {
					projectItems = append(projectItems, fmt.Sprintf("%s  [%s]", p.Title, strings.Join(p.EffectiveTags(), ", ")))
					for _, t := range p.EffectiveTags() {
						tags[t] = true
					}
				}
				tagOptions = tagOptions[:0]
				for t := range tags {
					tagOptions = append(tagOptions, t)
				}
				sort.Strings(tagOptions)
				selectedProject = -1
				projectList.UnselectAll()
				projectList.Refresh()
				notify(fmt.Sprintf("%d projects", len(projects)))
			})
		}()
	}

	refreshSlides := func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			list, err := client.ListSlides(ctx)
			fyne.Do(func() {
				if err != nil {
					l.Error("slide fetch failed", slog.Any("err", err))
					notify("Could not load slides.")
					return
				}
				slides = list
				slideItems = slideItems[:0]
				for _, s := range slides {
					slideItems = append(slideItems, s.Title)
				}
				selectedSlide = -1
				slideList.UnselectAll()
				slideList.Refresh()
			})
		}()
	}

	// Dashboard counts load concurrently and independently.
	refreshDashboard := func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			list, err := client.ListProjects(ctx)
			fyne.Do(func() {
				if err != nil {
					projectCountLabel.SetText("?")
					return
				}
				projectCountLabel.SetText(fmt.Sprintf("%d", len(list)))
			})
		}()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			list, err := client.ListSlides(ctx)
			fyne.Do(func() {
				if err != nil {
					slideCountLabel.SetText("?")
					return
				}
				slideCountLabel.SetText(fmt.Sprintf("%d", len(list)))
			})
		}()
	}

	// ---- project editor modal ----
	openProjectEditor := func(editor *session.Editor, onDone func()) {
		openEditor = editor
		titleEntry := widget.NewEntry()
		titleEntry.SetText(editor.Form.Title)
		titleEntry.OnChanged = func(s string) { editor.Form.Title = s }

		descEntry := widget.NewMultiLineEntry()
		descEntry.SetMinRowsVisible(6)
		descEntry.SetText(richtext.Strip(editor.Form.Description))
		descEntry.OnChanged = func(s string) {
			if html, err := richtext.Render(s); err == nil {
				editor.Form.Description = html
			}
		}

		tagValue := ""
		if len(editor.Form.Tags) > 0 {
			tagValue = editor.Form.Tags[0]
		}
		tagSelect := widget.NewSelectEntry(tagOptions)
		tagSelect.SetText(tagValue)
		tagSelect.OnChanged = func(s string) {
			s = strings.TrimSpace(s)
			if s == "" {
				editor.Form.Tags = nil
			} else {
				editor.Form.Tags = []string{s}
			}
		}

		coverLabel := widget.NewLabel("")
		refreshCoverLabel := func() {
			switch {
			case editor.Form.Cover.IsPending():
				_, name, _ := editor.Form.Cover.File()
				coverLabel.SetText("new: " + name)
			case editor.Form.Cover.URL() != "":
				coverLabel.SetText(editor.Form.Cover.URL())
			default:
				coverLabel.SetText("none")
			}
		}
		refreshCoverLabel()
		coverBtn := widget.NewButton("Choose cover...", func() {
			dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				if err := editor.SelectCover(path); err != nil {
					dialog.ShowError(err, w)
					return
				}
				refreshCoverLabel()
			}, w)
		})

		// data rows
		rowsBox := container.NewVBox()
		var rebuildRows func()
		rebuildRows = func() {
			rowsBox.RemoveAll()
			for i := range editor.Rows {
				idx := i
				keyEntry := widget.NewEntry()
				keyEntry.SetPlaceHolder("key")
				keyEntry.SetText(editor.Rows[idx].Key)
				keyEntry.OnChanged = func(s string) { editor.Rows[idx].Key = s }
				valEntry := widget.NewEntry()
				valEntry.SetPlaceHolder("value")
				valEntry.SetText(editor.Rows[idx].Value)
				valEntry.OnChanged = func(s string) { editor.Rows[idx].Value = s }
				delBtn := widget.NewButton("x", func() {
					go func() {
						ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
						defer cancel()
						err := editor.RemoveRow(ctx, idx, client)
						fyne.Do(func() {
							if err != nil {
								dialog.ShowError(err, w)
								return
							}
							rebuildRows()
						})
					}()
				})
				rowsBox.Add(container.NewBorder(nil, nil, nil, delBtn,
					container.NewGridWithColumns(2, keyEntry, valEntry)))
			}
			rowsBox.Refresh()
		}
		rebuildRows()
		addRowBtn := widget.NewButton("Add row", func() {
			editor.AddRow()
			rebuildRows()
		})

		// gallery
		previews, perr := gallery.NewPreviewSet("")
		if perr != nil {
			l.Warn("previews unavailable", slog.Any("err", perr))
		}
		galleryBox := container.NewVBox()
		var rebuildGallery func()
		rebuildGallery = func() {
			galleryBox.RemoveAll()
			imgs := editor.Board.Images()
			var sources []gallery.Source
			if previews != nil {
				if s, err := previews.Refresh(imgs); err == nil {
					sources = s
				} else {
					l.Warn("preview refresh failed", slog.Any("err", err))
				}
			}
			for i, im := range imgs {
				idx := i
				var thumb fyne.CanvasObject = widget.NewLabel("")
				caption := im.Name
				if idx < len(sources) {
					src := sources[idx]
					switch {
					case src.Path != "":
						img := canvas.NewImageFromFile(src.Path)
						img.FillMode = canvas.ImageFillContain
						img.SetMinSize(fyne.NewSize(64, 64))
						thumb = img
					case src.URL != "":
						caption = src.URL
					}
				}
				upBtn := widget.NewButton("^", func() {
					if editor.Board.Move(idx, idx-1) {
						rebuildGallery()
					}
				})
				downBtn := widget.NewButton("v", func() {
					if editor.Board.Move(idx, idx+1) {
						rebuildGallery()
					}
				})
				delBtn := widget.NewButton("x", func() {
					remove := func() {
						go func() {
							ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
							defer cancel()
							err := editor.Board.Remove(ctx, idx, client)
							fyne.Do(func() {
								if err != nil {
									notify("Could not delete gallery image.")
									dialog.ShowError(err, w)
									return
								}
								notify("Gallery image deleted.")
								rebuildGallery()
							})
						}()
					}
					if cfg.General.ConfirmDelete && imgs[idx].Persisted() {
						dialog.ShowConfirm("Delete image", "Remove this image from the gallery?", func(ok bool) {
							if ok {
								remove()
							}
						}, w)
						return
					}
					remove()
				})
				galleryBox.Add(container.NewBorder(nil, nil, thumb,
					container.NewHBox(upBtn, downBtn, delBtn),
					widget.NewLabel(fmt.Sprintf("%d. %s", im.Order, caption))))
			}
			galleryBox.Refresh()
		}
		rebuildGallery()
		addImagesBtn := widget.NewButton("Add images...", func() {
			dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				if err := editor.SelectGallery([]string{path}); err != nil {
					dialog.ShowError(err, w)
					return
				}
				rebuildGallery()
			}, w)
		})

		form := container.NewVBox(
			widget.NewLabel("Title"), titleEntry,
			widget.NewLabel("Description (markdown)"), descEntry,
			widget.NewLabel("Tag"), tagSelect,
			container.NewHBox(widget.NewLabel("Cover:"), coverLabel, coverBtn),
			widget.NewSeparator(),
			widget.NewLabel("Custom data"), rowsBox, addRowBtn,
			widget.NewSeparator(),
			widget.NewLabel("Gallery"), galleryBox, addImagesBtn,
		)

		var d *dialog.CustomDialog
		saveBtn := widget.NewButton("Save", nil)
		saveBtn.OnTapped = func() {
			saveBtn.Disable()
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*requestTimeout)
				defer cancel()
				res, err := editor.Submit(ctx, client)
				fyne.Do(func() {
					saveBtn.Enable()
					if err != nil {
						if err == session.ErrSubmitInFlight {
							notify("Already saving...")
							return
						}
						notify("Save failed.")
						dialog.ShowError(err, w)
						return
					}
					if res.FailedUploads > 0 {
						dialog.ShowInformation("Upload warning",
							fmt.Sprintf("%d gallery image(s) failed to upload.", res.FailedUploads), w)
					}
					if store != nil {
						ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
						_ = store.Delete(ctx2, drafts.KindProject, editor.ProjectID())
						cancel2()
					}
					notify("Project saved.")
					d.Hide()
					refreshProjects()
				})
			}()
		}

		body := container.NewBorder(nil, container.NewHBox(saveBtn), nil, nil,
			container.NewVScroll(form))
		d = dialog.NewCustom("Project", "Close", body, w)
		d.Resize(fyne.NewSize(640, 640))
		d.SetOnClosed(func() {
			if previews != nil {
				_ = previews.Close()
			}
			if store != nil {
				if data, err := EncodeProjectDraft(editor); err == nil {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					_ = store.Save(ctx, drafts.KindProject, editor.ProjectID(), data)
					cancel()
				}
			}
			openEditor = nil
			if onDone != nil {
				onDone()
			}
		})

		// offer a stored draft before the user starts typing
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			draft, derr := store.Load(ctx, drafts.KindProject, editor.ProjectID())
			cancel()
			if derr == nil {
				dialog.ShowConfirm("Restore draft",
					fmt.Sprintf("A draft from %s exists. Restore it?", draft.UpdatedAt.Format("2006-01-02 15:04")),
					func(ok bool) {
						if !ok {
							return
						}
						if err := ApplyProjectDraft(editor, draft.Payload); err != nil {
							dialog.ShowError(err, w)
							return
						}
						titleEntry.SetText(editor.Form.Title)
						descEntry.SetText(richtext.Strip(editor.Form.Description))
						if len(editor.Form.Tags) > 0 {
							tagSelect.SetText(editor.Form.Tags[0])
						}
						rebuildRows()
					}, w)
			}
		}
		d.Show()
	}

	// ---- slide editor modal ----
	openSlideEditor := func(editor *session.SlideEditor) {
		titleEntry := widget.NewEntry()
		titleEntry.SetText(editor.Title)
		titleEntry.OnChanged = func(s string) { editor.Title = s }

		imageLabel := widget.NewLabel("")
		refreshImageLabel := func() {
			switch {
			case editor.Image.IsPending():
				_, name, _ := editor.Image.File()
				imageLabel.SetText("new: " + name)
			case editor.Image.URL() != "":
				imageLabel.SetText(editor.Image.URL())
			default:
				imageLabel.SetText("none")
			}
		}
		refreshImageLabel()
		imageBtn := widget.NewButton("Choose image...", func() {
			dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				if err := editor.SelectImage(path); err != nil {
					dialog.ShowError(err, w)
					return
				}
				refreshImageLabel()
			}, w)
		})

		var d *dialog.CustomDialog
		saveBtn := widget.NewButton("Save", nil)
		saveBtn.OnTapped = func() {
			saveBtn.Disable()
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				_, err := editor.Submit(ctx, client)
				fyne.Do(func() {
					saveBtn.Enable()
					if err != nil {
						notify("Save failed.")
						dialog.ShowError(err, w)
						return
					}
					if store != nil {
						ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
						_ = store.Delete(ctx2, drafts.KindSlide, editor.SlideID())
						cancel2()
					}
					notify("Slide saved.")
					d.Hide()
					refreshSlides()
				})
			}()
		}
		body := container.NewVBox(
			widget.NewLabel("Title"), titleEntry,
			container.NewHBox(widget.NewLabel("Image:"), imageLabel, imageBtn),
			saveBtn,
		)
		d = dialog.NewCustom("Slide", "Close", body, w)
		d.Resize(fyne.NewSize(480, 280))
		d.SetOnClosed(func() {
			if store != nil {
				if data, err := EncodeSlideDraft(editor); err == nil {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					_ = store.Save(ctx, drafts.KindSlide, editor.SlideID(), data)
					cancel()
				}
			}
		})

		// offer a stored draft before the user starts typing
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			draft, derr := store.Load(ctx, drafts.KindSlide, editor.SlideID())
			cancel()
			if derr == nil {
				dialog.ShowConfirm("Restore draft",
					fmt.Sprintf("A draft from %s exists. Restore it?", draft.UpdatedAt.Format("2006-01-02 15:04")),
					func(ok bool) {
						if !ok {
							return
						}
						if err := ApplySlideDraft(editor, draft.Payload); err != nil {
							dialog.ShowError(err, w)
							return
						}
						titleEntry.SetText(editor.Title)
					}, w)
			}
		}
		d.Show()
	}

	// ---- about tab ----
	aboutEntry := widget.NewMultiLineEntry()
	aboutEntry.SetMinRowsVisible(10)
	aboutBackgroundLabel := widget.NewLabel("none")
	var aboutEditor *session.AboutEditor
	aboutLoadedText := ""
	loadAbout := func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			about, err := client.GetAbout(ctx)
			fyne.Do(func() {
				if err != nil {
					l.Error("about fetch failed", slog.Any("err", err))
					notify("Could not load the about section.")
					return
				}
				aboutEditor = session.EditAbout(about)
				aboutLoadedText = richtext.Strip(about.Text)
				aboutEntry.SetText(aboutLoadedText)
				if about.BackgroundImage != "" {
					aboutBackgroundLabel.SetText(about.BackgroundImage)
				}
				if store != nil {
					ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
					draft, derr := store.Load(ctx2, drafts.KindAbout, 0)
					cancel2()
					if derr == nil {
						dialog.ShowConfirm("Restore draft",
							fmt.Sprintf("An about draft from %s exists. Restore it?", draft.UpdatedAt.Format("2006-01-02 15:04")),
							func(ok bool) {
								if !ok {
									return
								}
								if err := ApplyAboutDraft(aboutEditor, draft.Payload); err != nil {
									dialog.ShowError(err, w)
									return
								}
								aboutEntry.SetText(richtext.Strip(aboutEditor.Text))
							}, w)
					}
				}
			})
		}()
	}
	// flushed by the close intercept so unsaved about edits survive a restart
	saveAboutDraft = func() {
		if store == nil || aboutEditor == nil || aboutEntry.Text == aboutLoadedText {
			return
		}
		if html, err := richtext.Render(aboutEntry.Text); err == nil {
			aboutEditor.Text = html
		}
		if data, err := EncodeAboutDraft(aboutEditor); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = store.Save(ctx, drafts.KindAbout, 0, data)
			cancel()
		}
	}
	aboutBackgroundBtn := widget.NewButton("Choose background...", func() {
		if aboutEditor == nil {
			return
		}
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := aboutEditor.SelectBackground(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			aboutBackgroundLabel.SetText("new: " + filepath.Base(path))
		}, w)
	})
	aboutSaveBtn := widget.NewButton("Save about section", func() {
		if aboutEditor == nil {
			return
		}
		if html, err := richtext.Render(aboutEntry.Text); err == nil {
			aboutEditor.Text = html
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			err := aboutEditor.Submit(ctx, client)
			fyne.Do(func() {
				if err != nil {
					notify("Save failed.")
					dialog.ShowError(err, w)
					return
				}
				aboutLoadedText = aboutEntry.Text
				if store != nil {
					ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
					_ = store.Delete(ctx2, drafts.KindAbout, 0)
					cancel2()
				}
				notify("About section saved.")
			})
		}()
	})

	// ---- tab actions ----
	newProjectBtn := widget.NewButton("New", func() {
		openProjectEditor(session.NewProjectEditor(), nil)
	})
	editProjectBtn := widget.NewButton("Edit", func() {
		if selectedProject < 0 || selectedProject >= len(projects) {
			notify("Select a project first.")
			return
		}
		openProjectEditor(session.EditProject(projects[selectedProject]), nil)
	})
	deleteProjectBtn := widget.NewButton("Delete", func() {
		if selectedProject < 0 || selectedProject >= len(projects) {
			notify("Select a project first.")
			return
		}
		p := projects[selectedProject]
		doDelete := func() {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				err := client.DeleteProject(ctx, p.ID)
				fyne.Do(func() {
					if err != nil {
						notify("Delete failed.")
						dialog.ShowError(err, w)
						return
					}
					notify("Project deleted.")
					refreshProjects()
				})
			}()
		}
		if cfg.General.ConfirmDelete {
			dialog.ShowConfirm("Delete project", fmt.Sprintf("Delete %q and all its content?", p.Title), func(ok bool) {
				if ok {
					doDelete()
				}
			}, w)
			return
		}
		doDelete()
	})
	refreshProjectsBtn := widget.NewButton("Refresh", refreshProjects)

	newSlideBtn := widget.NewButton("New", func() { openSlideEditor(session.NewSlideEditor()) })
	editSlideBtn := widget.NewButton("Edit", func() {
		if selectedSlide < 0 || selectedSlide >= len(slides) {
			notify("Select a slide first.")
			return
		}
		openSlideEditor(session.EditSlide(slides[selectedSlide]))
	})
	deleteSlideBtn := widget.NewButton("Delete", func() {
		if selectedSlide < 0 || selectedSlide >= len(slides) {
			notify("Select a slide first.")
			return
		}
		s := slides[selectedSlide]
		doDelete := func() {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				err := client.DeleteSlide(ctx, s.ID)
				fyne.Do(func() {
					if err != nil {
						notify("Delete failed.")
						dialog.ShowError(err, w)
						return
					}
					notify("Slide deleted.")
					refreshSlides()
				})
			}()
		}
		if cfg.General.ConfirmDelete {
			dialog.ShowConfirm("Delete slide", fmt.Sprintf("Delete %q?", s.Title), func(ok bool) {
				if ok {
					doDelete()
				}
			}, w)
			return
		}
		doDelete()
	})

	dashboardTab := container.NewVBox(
		widget.NewLabelWithStyle("Overview", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Projects:"), projectCountLabel),
		container.NewHBox(widget.NewLabel("Slides:"), slideCountLabel),
		widget.NewButton("Refresh", refreshDashboard),
	)
	projectsTab := container.NewBorder(
		container.NewHBox(newProjectBtn, editProjectBtn, deleteProjectBtn, refreshProjectsBtn),
		nil, nil, nil, projectList)
	slidesTab := container.NewBorder(
		container.NewHBox(newSlideBtn, editSlideBtn, deleteSlideBtn, widget.NewButton("Refresh", refreshSlides)),
		nil, nil, nil, slideList)
	aboutTab := container.NewBorder(nil,
		container.NewVBox(container.NewHBox(widget.NewLabel("Background:"), aboutBackgroundLabel, aboutBackgroundBtn), aboutSaveBtn),
		nil, nil, aboutEntry)

	tabs := container.NewAppTabs(
		container.NewTabItem("Dashboard", dashboardTab),
		container.NewTabItem("Projects", projectsTab),
		container.NewTabItem("Slides", slidesTab),
		container.NewTabItem("About", aboutTab),
	)

	showMain := func() {
		w.SetContent(container.NewBorder(nil, status, nil, nil, tabs))
		telemetry.Event("session_start", nil)
		refreshDashboard()
		refreshProjects()
		refreshSlides()
		loadAbout()
	}

	// ---- login ----
	var showLogin func(message string)
	showLogin = func(message string) {
		emailEntry := widget.NewEntry()
		emailEntry.SetPlaceHolder("email")
		passEntry := widget.NewPasswordEntry()
		passEntry.SetPlaceHolder("password")
		infoLabel := widget.NewLabel(message)
		loginBtn := widget.NewButton("Sign in", nil)
		loginBtn.OnTapped = func() {
			loginBtn.Disable()
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				tok, user, err := client.Login(ctx, emailEntry.Text, passEntry.Text)
				fyne.Do(func() {
					loginBtn.Enable()
					if err != nil {
						l.Warn("login failed", slog.Any("err", err))
						infoLabel.SetText("Login failed. Check your credentials.")
						return
					}
					client.SetToken(tok)
					if err := config.StoreToken(tok); err != nil {
						l.Warn("token not persisted", slog.Any("err", err))
					}
					l.Info("logged in", slog.String("user", user.Email))
					showMain()
				})
			}()
		}
		form := container.NewVBox(
			widget.NewLabelWithStyle("Site Admin", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
			infoLabel, emailEntry, passEntry, loginBtn,
		)
		w.SetContent(container.NewCenter(form))
	}

	// startup: validate a persisted token before showing the main view
	if token == "" {
		showLogin("")
	} else {
		w.SetContent(container.NewCenter(widget.NewLabel("Checking session...")))
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			user, err := client.CurrentUser(ctx)
			fyne.Do(func() {
				if err != nil {
					l.Warn("stored token rejected", slog.Any("err", err))
					if api.IsUnauthorized(err) {
						_ = config.ClearToken()
						client.SetToken("")
					}
					showLogin("Your session expired. Please sign in again.")
					return
				}
				l.Info("session valid", slog.String("user", user.Email))
				showMain()
			})
		}()
	}

	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}
