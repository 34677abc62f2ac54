/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"

	"collatedit/internal/geometry"
)

// ErrNotTextBox is returned by SetStyle when the target is not a text box.
// Every other operation on an invalid target is a silent no-op; style edits
// are rejected explicitly so the UI can keep the form disabled.
var ErrNotTextBox = errors.New("scene: style target is not a text box")

// Scene is the ordered set of drawables for one editable page.
// Index 0 is back-most. All mutation is synchronous and single-threaded;
// the generation counter detects stale async image-decode completions.
type Scene struct {
	objects []Object
	gen     uint64
}

func New() *Scene { return &Scene{gen: 1} }

// Objects returns the z-ordered object slice (back to front). Callers must
// not reorder it directly; use the editing operations.
func (s *Scene) Objects() []Object { return s.objects }

func (s *Scene) Len() int { return len(s.objects) }

// Generation identifies the current scene build. It advances on Clear, so a
// decode completion captured against an older generation is rejected.
func (s *Scene) Generation() uint64 { return s.gen }

// Clear removes every object and starts a new generation.
func (s *Scene) Clear() {
	s.objects = nil
	s.gen++
}

// Append adds an object at the front of the z-order.
func (s *Scene) Append(o Object) { s.objects = append(s.objects, o) }

// InsertBack adds an object at the back of the z-order. The imported
// background image lands here.
func (s *Scene) InsertBack(o Object) {
	s.objects = append([]Object{o}, s.objects...)
}

func (s *Scene) indexOf(o Object) int {
	for i, x := range s.objects {
		if x == o {
			return i
		}
	}
	return -1
}

// Contains reports membership of o in the scene.
func (s *Scene) Contains(o Object) bool { return s.indexOf(o) >= 0 }

// Remove deletes o from the scene. Absent targets are a no-op.
func (s *Scene) Remove(o Object) bool {
	i := s.indexOf(o)
	if i < 0 {
		return false
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	return true
}

// BringToFront moves o to the end of the order. No-op if absent.
func (s *Scene) BringToFront(o Object) {
	i := s.indexOf(o)
	if i < 0 || i == len(s.objects)-1 {
		return
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	s.objects = append(s.objects, o)
}

// SendToBack moves o to the start of the order. No-op if absent.
func (s *Scene) SendToBack(o Object) {
	i := s.indexOf(o)
	if i <= 0 {
		return
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	s.objects = append([]Object{o}, s.objects...)
}

// FlipHorizontal toggles the horizontal flip flag. No-op if absent;
// idempotent under double application.
func (s *Scene) FlipHorizontal(o Object) {
	if s.Contains(o) {
		o.toggleFlipX()
	}
}

// FlipVertical toggles the vertical flip flag. No-op if absent.
func (s *Scene) FlipVertical(o Object) {
	if s.Contains(o) {
		o.toggleFlipY()
	}
}

// SetStyle mutates exactly one named style attribute of a text box.
// Image targets are rejected with ErrNotTextBox; absent targets are ignored.
func (s *Scene) SetStyle(o Object, field StyleField, value any) error {
	if !s.Contains(o) {
		return nil
	}
	tb, ok := o.(*TextBox)
	if !ok {
		return ErrNotTextBox
	}
	return tb.apply(field, value)
}

// HitTest returns the top-most object containing p, or nil.
func (s *Scene) HitTest(p geometry.Pt) Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Hit(p) {
			return s.objects[i]
		}
	}
	return nil
}
