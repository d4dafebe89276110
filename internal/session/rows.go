/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import "gositeadmin/internal/domain"

// RowDiff is the result of classifying the editable rows against the snapshot
// taken when the session opened. Rows with blank keys never appear in either
// list.
type RowDiff struct {
	Creates []domain.DataRow // no server ID yet
	Updates []domain.DataRow // persisted, key or value changed
}

// Empty reports whether the diff requires no server calls.
func (d RowDiff) Empty() bool { return len(d.Creates) == 0 && len(d.Updates) == 0 }

// DiffRows classifies current rows against the immutable snapshot. A row
// without an ID is new; a row whose ID exists in the snapshot is an update only
// when its key or value differs; identical rows produce no call. Rows whose
// key is blank are skipped entirely, persisted or not.
func DiffRows(current, snapshot []domain.DataRow) RowDiff {
	orig := make(map[string]domain.DataRow, len(snapshot))
	for _, r := range snapshot {
		orig[r.ID] = r
	}
	var d RowDiff
	for _, r := range current {
		if r.Blank() {
			continue
		}
		if r.ID == "" {
			d.Creates = append(d.Creates, r)
			continue
		}
		if o, ok := orig[r.ID]; ok && o.Key == r.Key && o.Value == r.Value {
			continue
		}
		d.Updates = append(d.Updates, r)
	}
	return d
}

func snapshotRows(rows []domain.DataRow) []domain.DataRow {
	return append([]domain.DataRow(nil), rows...)
}
