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

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// readFileRef loads one picked file fully into memory so later submits never
// depend on the path still existing.
func readFileRef(path string) (ImageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageRef{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return PendingUpload(data, filepath.Base(path)), nil
}

// readFileRefs loads all picked files concurrently. Any failure aborts the
// whole selection: the error of the first failing file is returned and no
// partial result leaks out.
func readFileRefs(paths []string) ([]ImageRef, error) {
	refs := make([]ImageRef, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			refs[i], errs[i] = readFileRef(p)
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return refs, nil
}
