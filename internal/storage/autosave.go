/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AutosaveCrashSnapshot writes the in-memory document to a timestamped
// autosave file in the backups folder. It deliberately does not touch the
// main manifest; a crashing process must never corrupt the last good save.
func AutosaveCrashSnapshot(dh *DocumentHandle) (string, error) {
	if dh == nil {
		return "", errors.New("nil DocumentHandle")
	}
	if dh.Root == "" {
		return "", errors.New("document has no root")
	}
	bdir := filepath.Join(dh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(dh.Document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal autosave: %w", err)
	}
	data = append(data, '\n')

	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.autosave-%s.json", ManifestFileName, stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}
