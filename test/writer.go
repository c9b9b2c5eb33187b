// This file is part of citrine3ds.
//
// citrine3ds is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// citrine3ds is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with citrine3ds.  If not, see <https://www.gnu.org/licenses/>.

package test

import "strings"

// Writer is a small io.Writer used by tests that only need to compare
// accumulated output against an expected string, such as modalflag's
// help-text tests.
type Writer struct {
	b strings.Builder
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

// Compare reports whether the accumulated output equals s.
func (w *Writer) Compare(s string) bool {
	return w.b.String() == s
}

// Clear empties the accumulated output.
func (w *Writer) Clear() {
	w.b.Reset()
}
