/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package api is the HTTP client for the content site's REST backend. Every
// request carries the bearer token when one is set; bodies are JSON except for
// the multipart create/update operations.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gositeadmin/internal/domain"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// Client talks to the admin REST API.
type Client struct {
	BaseURL string
	token   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithInsecureTLS disables certificate verification (self-hosted backends).
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
}

// NewClient creates a client. baseURL may include a trailing slash; it will be
// normalized. token may be empty for unauthenticated use (login).
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: u.Path, Status: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, u.Path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, dest any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, dest)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, form *Form, dest any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, body, contentType, dest)
}

// loginRequest matches POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token. The returned token is not
// installed on the client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", domain.User{}, err
	}
	return resp.Token, resp.User, nil
}

// CurrentUser validates the installed token and returns the account behind it.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ListProjects returns all projects with their nested rows and galleries.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var list []domain.Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FilePart is an in-memory file for a multipart request.
type FilePart struct {
	Name string // original filename; defaults to uploaded-image.png when empty
	Data []byte
}

// ProjectUpsert is the multipart payload for project create/update.
// Image is sent only when non-nil: callers include it on create and on update
// only when the user replaced the cover.
type ProjectUpsert struct {
	Title       string
	Description string
	Tags        []string
	Image       *FilePart
}

func (p ProjectUpsert) form() *Form {
	f := NewForm()
	f.AddField("title", p.Title)
	f.AddField("description", p.Description)
	// repeated fields, never a single encoded array
	for _, tag := range p.Tags {
		f.AddField("tags[]", tag)
	}
	if p.Image != nil {
		f.AddFile("image", p.Image.Name, p.Image.Data)
	}
	return f
}

// CreateProject creates a project and returns the server's view of it
// (at minimum the new ID).
func (c *Client) CreateProject(ctx context.Context, p ProjectUpsert) (domain.Project, error) {
	var created domain.Project
	if err := c.doMultipart(ctx, http.MethodPost, "/projects", p.form(), &created); err != nil {
		return domain.Project{}, err
	}
	return created, nil
}

// UpdateProject sends a partial update. Omitted parts (nil Image) are left
// untouched by the server.
func (c *Client) UpdateProject(ctx context.Context, id int64, p ProjectUpsert) error {
	return c.doMultipart(ctx, http.MethodPost, fmt.Sprintf("/projects/%d", id), p.form(), nil)
}

// DeleteProject removes a project and all nested content.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

// AddGalleryImage uploads one gallery image for a project.
func (c *Client) AddGalleryImage(ctx context.Context, projectID int64, img FilePart) (domain.GalleryImage, error) {
	f := NewForm()
	f.AddFile("image", img.Name, img.Data)
	var created domain.GalleryImage
	if err := c.doMultipart(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/gallery", projectID), f, &created); err != nil {
		return domain.GalleryImage{}, err
	}
	return created, nil
}

// DeleteGalleryImage removes one persisted gallery image.
func (c *Client) DeleteGalleryImage(ctx context.Context, projectID, imageID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d/gallery/%d", projectID, imageID), nil, nil)
}

type dataRowPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CreateDataRow adds one custom key/value row to a project.
func (c *Client) CreateDataRow(ctx context.Context, projectID int64, key, value string) (domain.DataRow, error) {
	var created domain.DataRow
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/data", projectID), dataRowPayload{Key: key, Value: value}, &created)
	if err != nil {
		return domain.DataRow{}, err
	}
	return created, nil
}

// UpdateDataRow rewrites one persisted key/value row.
func (c *Client) UpdateDataRow(ctx context.Context, projectID int64, rowID, key, value string) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/data/%s", projectID, url.PathEscape(rowID)), dataRowPayload{Key: key, Value: value}, nil)
}

// DeleteDataRow removes one persisted key/value row.
func (c *Client) DeleteDataRow(ctx context.Context, projectID int64, rowID string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d/data/%s", projectID, url.PathEscape(rowID)), nil, nil)
}

// ListSlides returns all slider entries.
func (c *Client) ListSlides(ctx context.Context) ([]domain.Slide, error) {
	var list []domain.Slide
	if err := c.doJSON(ctx, http.MethodGet, "/slides", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SlideUpsert is the multipart payload for slide create/update.
type SlideUpsert struct {
	Title string
	Image *FilePart
}

func (s SlideUpsert) form() *Form {
	f := NewForm()
	f.AddField("title", s.Title)
	if s.Image != nil {
		f.AddFile("image", s.Image.Name, s.Image.Data)
	}
	return f
}

// CreateSlide adds a slide.
func (c *Client) CreateSlide(ctx context.Context, s SlideUpsert) (domain.Slide, error) {
	var created domain.Slide
	if err := c.doMultipart(ctx, http.MethodPost, "/slides", s.form(), &created); err != nil {
		return domain.Slide{}, err
	}
	return created, nil
}

// UpdateSlide replaces a slide.
func (c *Client) UpdateSlide(ctx context.Context, id int64, s SlideUpsert) error {
	return c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/slides/%d", id), s.form(), nil)
}

// DeleteSlide removes a slide.
func (c *Client) DeleteSlide(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/slides/%d", id), nil, nil)
}

// GetAbout fetches the singleton about-us section.
func (c *Client) GetAbout(ctx context.Context) (domain.About, error) {
	var a domain.About
	if err := c.doJSON(ctx, http.MethodGet, "/about", nil, &a); err != nil {
		return domain.About{}, err
	}
	return a, nil
}

// AboutUpdate is the multipart payload for the about-us section. The
// background image part is included only when the user picked a new file.
type AboutUpdate struct {
	Text            string
	BackgroundImage *FilePart
}

// UpdateAbout rewrites the about-us section.
func (c *Client) UpdateAbout(ctx context.Context, a AboutUpdate) error {
	f := NewForm()
	f.AddField("text", a.Text)
	if a.BackgroundImage != nil {
		f.AddFile("background_image", a.BackgroundImage.Name, a.BackgroundImage.Data)
	}
	return c.doMultipart(ctx, http.MethodPost, "/about", f, nil)
}
