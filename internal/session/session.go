/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session holds the edit-session state for projects, slides and the
// about section: form fields, dirty tracking, the data-row diff and the submit
// orchestration against the backend.
package session

import (
	"errors"
	"sync"
)

// ErrSubmitInFlight is returned when Submit is called while a previous submit
// on the same editor has not settled yet.
var ErrSubmitInFlight = errors.New("a submit is already in flight")

// gate allows at most one in-flight submit per editor.
type gate struct {
	mu   sync.Mutex
	busy bool
}

func (g *gate) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return ErrSubmitInFlight
	}
	g.busy = true
	return nil
}

func (g *gate) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

type imageKind int

const (
	imageNone imageKind = iota
	imageRemote
	imagePending
)

// ImageRef is an image field of a form: either a URL already on the server or
// raw bytes picked locally and awaiting upload. The two states are explicit;
// there is no sniffing of value types.
type ImageRef struct {
	kind imageKind
	url  string
	data []byte
	name string
}

// RemoteURL refers to an image the server already serves.
func RemoteURL(u string) ImageRef {
	if u == "" {
		return ImageRef{}
	}
	return ImageRef{kind: imageRemote, url: u}
}

// PendingUpload refers to locally selected bytes not yet uploaded.
func PendingUpload(data []byte, name string) ImageRef {
	return ImageRef{kind: imagePending, data: data, name: name}
}

// IsZero reports whether no image is set at all.
func (r ImageRef) IsZero() bool { return r.kind == imageNone }

// IsPending reports whether the reference carries bytes awaiting upload.
func (r ImageRef) IsPending() bool { return r.kind == imagePending }

// URL returns the server URL for a remote reference, "" otherwise.
func (r ImageRef) URL() string {
	if r.kind != imageRemote {
		return ""
	}
	return r.url
}

// File returns the pending bytes and filename; ok is false unless the
// reference is a pending upload.
func (r ImageRef) File() (data []byte, name string, ok bool) {
	if r.kind != imagePending {
		return nil, "", false
	}
	return r.data, r.name, true
}
