/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"testing"
)

func TestEffectiveTagsPrefersExplicitTags(t *testing.T) {
	p := Project{Category: "RESIDENTIAL", Tags: []string{"COMMERCIAL"}}
	got := p.EffectiveTags()
	if len(got) != 1 || got[0] != "COMMERCIAL" {
		t.Fatalf("EffectiveTags = %v, want [COMMERCIAL]", got)
	}
}

func TestEffectiveTagsFallsBackToCategory(t *testing.T) {
	p := Project{Category: "RESIDENTIAL"}
	got := p.EffectiveTags()
	if len(got) != 1 || got[0] != "RESIDENTIAL" {
		t.Fatalf("EffectiveTags = %v, want [RESIDENTIAL]", got)
	}
	if (Project{}).EffectiveTags() != nil {
		t.Fatalf("expected nil tags for empty project")
	}
}

func TestDataRowBlank(t *testing.T) {
	cases := []struct {
		row  DataRow
		want bool
	}{
		{DataRow{Key: "", Value: "x"}, true},
		{DataRow{Key: "   ", Value: "x"}, true},
		{DataRow{Key: "area", Value: ""}, false},
	}
	for _, c := range cases {
		if got := c.row.Blank(); got != c.want {
			t.Fatalf("Blank(%q) = %v, want %v", c.row.Key, got, c.want)
		}
	}
}

func TestProjectUnmarshalServerShape(t *testing.T) {
	raw := `{"id":7,"title":"Villa","category":"RESIDENTIAL","project_data":[{"id":"d1","key":"area","value":"120m2"}],"gallery":[{"id":3,"image":"https://cdn/x.jpg","order":1}]}`
	var p Project
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != 7 || len(p.Data) != 1 || p.Data[0].ID != "d1" || len(p.Gallery) != 1 {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.Gallery[0].Order != 1 || p.Gallery[0].Image == "" {
		t.Fatalf("unexpected gallery entry: %+v", p.Gallery[0])
	}
}
