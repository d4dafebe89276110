/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"testing"
)

// fakeStore keeps the token in memory so tests never touch the OS keychain.
type fakeStore struct {
	vals map[string]string
	err  error
}

func (f *fakeStore) Get(service, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.vals[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeStore) Set(service, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.vals[service+"/"+key] = value
	return nil
}
func (f *fakeStore) Delete(service, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.vals, service+"/"+key)
	return nil
}

func withFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	fs := &fakeStore{vals: map[string]string{}}
	old := tokenStore
	tokenStore = fs
	t.Cleanup(func() { tokenStore = old })
	return fs
}

func TestEnvOverridesAPIURL(t *testing.T) {
	withFakeStore(t)
	old := os.Getenv(EnvAPIURL)
	_ = os.Setenv(EnvAPIURL, "https://example.test:8443/api")
	t.Cleanup(func() { _ = os.Setenv(EnvAPIURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.API.BaseURL, "https://example.test:8443/api"; got != want {
		t.Fatalf("API.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	withFakeStore(t)
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.File = "/tmp/foko.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || dst.Logging.File != "/tmp/foko.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	withFakeStore(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogFile, "/tmp/foko-env.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || cfg.Logging.File != "/tmp/foko-env.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	fs := withFakeStore(t)
	if err := StoreToken("abc123"); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}
	if _, tok, _ := Load(); tok != "abc123" {
		t.Fatalf("token from Load = %q, want abc123", tok)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if len(fs.vals) != 0 {
		t.Fatalf("token not removed from store: %v", fs.vals)
	}
}

func TestStoreTokenRejectsEmpty(t *testing.T) {
	withFakeStore(t)
	if err := StoreToken("   "); err == nil {
		t.Fatalf("expected error storing blank token")
	}
}
