/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxSuffix bounds the search so a directory full of variants cannot spin forever.
const maxSuffix = 100000

// UniquePath returns path when nothing exists there, otherwise the first
// unused name_N.ext with N counting up from 1.
func UniquePath(path string) (string, error) {
	free, err := unused(path)
	if err != nil || free {
		return path, err
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= maxSuffix; i++ {
		cand := fmt.Sprintf("%s_%d%s", base, i, ext)
		free, err := unused(cand)
		if err != nil {
			return "", err
		}
		if free {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", path, maxSuffix)
}

func unused(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
