//go:build !fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui contains the desktop editor shell. The real implementation is
// behind the "fyne" build tag so the CLI builds without a display stack.
package ui

import "fmt"

// Run reports that the binary was built without the desktop UI.
func Run(docDir string) error {
	return fmt.Errorf("UI not built into this binary; rebuild with -tags fyne (go build -tags fyne ./cmd/collatedit)")
}
